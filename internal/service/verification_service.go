package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
	"Trek_Community/internal/pkg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultCodeTTL    = 15 * time.Minute
	DefaultCodeLength = 6
)

// CodeStore 验证码存储：同一 (purpose, user) 写入即覆盖旧码
type CodeStore interface {
	Put(ctx context.Context, rec *model.VerificationCode) error
	Get(ctx context.Context, purpose model.Purpose, userID uint64) (*model.VerificationCode, error)
	Consume(ctx context.Context, purpose model.Purpose, userID uint64, code string) error
	Delete(ctx context.Context, purpose model.Purpose, userID uint64) error
}

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type VerificationService struct {
	codes   CodeStore
	users   UserRepo
	mailer  Mailer
	clock   pkg.Clock
	ttl     time.Duration
	codeLen int
	log     zerolog.Logger
}

func NewVerificationService(codes CodeStore, users UserRepo, mailer Mailer, clock pkg.Clock, ttl time.Duration, codeLen int, log zerolog.Logger) *VerificationService {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if codeLen <= 0 {
		codeLen = DefaultCodeLength
	}
	return &VerificationService{
		codes:   codes,
		users:   users,
		mailer:  mailer,
		clock:   clock,
		ttl:     ttl,
		codeLen: codeLen,
		log:     log,
	}
}

func subjectFor(purpose model.Purpose) string {
	if purpose == model.PurposePasswordReset {
		return "重置密码"
	}
	return "邮箱验证"
}

// Generate 生成新码并发邮件。写入本身就是对旧码的作废；
// 返回的是确认 id，验证码本身不出现在响应和日志里。
func (s *VerificationService) Generate(ctx context.Context, userID uint64, purpose model.Purpose, email string) (string, error) {
	code, err := pkg.RandDigits(s.codeLen)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	now := s.clock.Now()
	rec := &model.VerificationCode{
		UserID:    userID,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.codes.Put(ctx, rec); err != nil {
		return "", err
	}

	subject := subjectFor(purpose)
	html := pkg.EmailCodeHTML(subject, code, s.ttl)
	if err := s.mailer.Send(email, subject+"验证码", html); err != nil {
		// 邮件没发出去就把码清掉，避免留下一个用户收不到的有效码
		_ = s.codes.Delete(ctx, purpose, userID)
		return "", fmt.Errorf("send mail: %w", err)
	}

	confirmation := uuid.NewString()
	s.log.Info().
		Uint64("user_id", userID).
		Str("purpose", string(purpose)).
		Str("confirmation", confirmation).
		Msg("verification code issued")
	return confirmation, nil
}

// Verify 校验并消费。Mismatch 不动存量记录，TTL 内可以重试；
// 已消费的记录再次校验报 AlreadyConsumed，不会静默成功。
func (s *VerificationService) Verify(ctx context.Context, userID uint64, purpose model.Purpose, code string) error {
	rec, err := s.codes.Get(ctx, purpose, userID)
	if err != nil {
		return err
	}
	if rec.Consumed {
		return apperr.ErrAlreadyConsumed
	}
	if s.clock.Now().After(rec.ExpiresAt) {
		return apperr.ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return apperr.ErrMismatch
	}
	if err := s.codes.Consume(ctx, purpose, userID, code); err != nil {
		return err
	}

	if purpose == model.PurposeEmailVerify {
		if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
			return fmt.Errorf("mark email verified: %w", err)
		}
	}
	s.log.Info().
		Uint64("user_id", userID).
		Str("purpose", string(purpose)).
		Msg("verification code consumed")
	return nil
}
