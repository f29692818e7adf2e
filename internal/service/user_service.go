package service

import (
	"context"
	"errors"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
	"Trek_Community/internal/pkg"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error)
	UpdatePassword(ctx context.Context, u *model.User, newPassword string) error
	MarkEmailVerified(ctx context.Context, id uint64) error
}

// TokenStore access token 固定在 redis，单点登录
type TokenStore interface {
	AddUserToken(ctx context.Context, usrID uint64, token string) error
	GetUserToken(ctx context.Context, usrID uint64) (string, error)
	ExtendUserToken(ctx context.Context, usrID uint64) error
	DeleteUserToken(ctx context.Context, usrID uint64) error
}

type UserService struct {
	repo         UserRepo
	tokens       TokenStore
	verification *VerificationService
	log          zerolog.Logger
}

func NewUserService(repo UserRepo, tokens TokenStore, verification *VerificationService, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, verification: verification, log: log}
}

func (s *UserService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 用户名或邮箱登录；查不到和密码错都报 Unauthorized，不区分
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.ErrUnauthorized
	}

	pair, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.AddUserToken(ctx, user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, usrID uint64) error {
	return s.tokens.DeleteUserToken(ctx, usrID)
}

// Refresh 换新 token 并把新的 access token 重新固定到 redis
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	claims, err := pkg.ParseAccess(pair.AccessToken)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if err := s.tokens.AddUserToken(ctx, claims.UserID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// ChangePassword 登录态修改密码，改完强制下线
func (s *UserService) ChangePassword(ctx context.Context, usrID uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, usrID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return apperr.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user, string(hash)); err != nil {
		return err
	}
	return s.Logout(ctx, usrID)
}

// ForgotPassword 给账号邮箱发重置码
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return s.verification.Generate(ctx, user.ID, model.PurposePasswordReset, email)
}

// ResetPassword 校验重置码并落新密码
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.verification.Verify(ctx, user.ID, model.PurposePasswordReset, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user, string(hash))
}
