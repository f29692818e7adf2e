package service

import (
	"context"
	"errors"
	"fmt"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"github.com/rs/zerolog"
)

type CommunityRepo interface {
	Create(ctx context.Context, c *model.Community) error
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
	FindByName(ctx context.Context, name string) (*model.Community, error)
	Update(ctx context.Context, c *model.Community) error
	Delete(ctx context.Context, id uint64) error
	ListPublicExcluding(ctx context.Context, userID uint64) ([]model.Community, error)
	ListJoined(ctx context.Context, userID uint64) ([]model.Community, error)
}

type MemberRepo interface {
	Add(ctx context.Context, m *model.CommunityMember) (bool, error)
	Remove(ctx context.Context, communityID, userID uint64) error
	IsMember(ctx context.Context, communityID, userID uint64) (bool, error)
	MemberIDs(ctx context.Context, communityID uint64) ([]uint64, error)
}

type CommunityService struct {
	repo     CommunityRepo
	members  MemberRepo
	users    UserRepo
	producer Producer
	log      zerolog.Logger
}

func NewCommunityService(repo CommunityRepo, members MemberRepo, users UserRepo, producer Producer, log zerolog.Logger) *CommunityService {
	return &CommunityService{repo: repo, members: members, users: users, producer: producer, log: log}
}

func (s *CommunityService) Create(ctx context.Context, creatorID uint64, name, desc string, isPublic bool) (*model.Community, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: community name required", apperr.ErrInvalid)
	}
	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	community := &model.Community{
		Name:        name,
		Description: desc,
		CreatorID:   creatorID,
		IsPublic:    isPublic,
	}
	if err := s.repo.Create(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) Get(ctx context.Context, id uint64) (*model.Community, []uint64, error) {
	community, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ids, err := s.members.MemberIDs(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return community, ids, nil
}

// Update 只允许改名称/描述/可见性；成员列表在自己的表里，请求体写什么都动不了它
func (s *CommunityService) Update(ctx context.Context, id uint64, name, desc string, isPublic bool) (*model.Community, error) {
	community, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" && name != community.Name {
		if other, err := s.repo.FindByName(ctx, name); err == nil && other.ID != id {
			return nil, apperr.ErrAlreadyExists
		} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		community.Name = name
	}
	community.Description = desc
	community.IsPublic = isPublic
	if err := s.repo.Update(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *CommunityService) Delete(ctx context.Context, id uint64) error {
	return s.repo.Delete(ctx, id)
}

// AddMember 按邮箱找人再幂等入会。第二个返回值标记这次是否真的新增，
// 已是成员时不算错误，调用方按 no-op 处理。
func (s *CommunityService) AddMember(ctx context.Context, communityID uint64, userEmail string) (*model.Community, bool, error) {
	user, err := s.users.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, false, err
	}
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return nil, false, err
	}

	added, err := s.members.Add(ctx, &model.CommunityMember{
		CommunityID: communityID,
		UserID:      user.ID,
		Role:        0,
	})
	if err != nil {
		return nil, false, err
	}
	if added {
		publish(ctx, s.log, s.producer, EventMemberAdded, communityID, map[string]uint64{"user_id": user.ID})
	}
	return community, added, nil
}

func (s *CommunityService) Leave(ctx context.Context, communityID, userID uint64) error {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return err
	}
	return s.members.Remove(ctx, communityID, userID)
}

func (s *CommunityService) Members(ctx context.Context, communityID uint64) ([]model.User, error) {
	if _, err := s.repo.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	ids, err := s.members.MemberIDs(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.users.FindByIDs(ctx, ids)
}

// ListPublic 公开社区列表，排除用户已加入的（查询谓词下推到存储层）
func (s *CommunityService) ListPublic(ctx context.Context, userID uint64) ([]model.Community, error) {
	return s.repo.ListPublicExcluding(ctx, userID)
}

func (s *CommunityService) ListJoined(ctx context.Context, userID uint64) ([]model.Community, error) {
	return s.repo.ListJoined(ctx, userID)
}
