package service

import (
	"context"
	"fmt"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"github.com/rs/zerolog"
)

type PostRepo interface {
	Create(ctx context.Context, p *model.Post) error
	FindByID(ctx context.Context, id uint64) (*model.Post, error)
	ListByCommunity(ctx context.Context, communityID uint64) ([]model.Post, error)
	Update(ctx context.Context, p *model.Post) error
	Delete(ctx context.Context, id uint64) error
}

type PostService struct {
	repo        PostRepo
	communities CommunityRepo
	comments    CommentRepo
	producer    Producer
	log         zerolog.Logger
}

func NewPostService(repo PostRepo, communities CommunityRepo, comments CommentRepo, producer Producer, log zerolog.Logger) *PostService {
	return &PostService{repo: repo, communities: communities, comments: comments, producer: producer, log: log}
}

func (s *PostService) Create(ctx context.Context, authorID, communityID uint64, title, content string) (*model.Post, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title required", apperr.ErrInvalid)
	}
	// 先确认社区还在
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}

	post := &model.Post{
		CommunityID: communityID,
		AuthorID:    authorID,
		Title:       title,
		Content:     content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	publish(ctx, s.log, s.producer, EventPostCreated, post.ID, map[string]uint64{"community_id": communityID, "author_id": authorID})
	return post, nil
}

// Get 帖子加上它的评论 id 列表，列表按 post_id 查出来，不存冗余数组
func (s *PostService) Get(ctx context.Context, id uint64) (*model.Post, []uint64, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ids, err := s.comments.IDsByPost(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return post, ids, nil
}

func (s *PostService) ListByCommunity(ctx context.Context, communityID uint64) ([]model.Post, error) {
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.repo.ListByCommunity(ctx, communityID)
}

// Update 只改标题和正文；评论归属是推导出来的，请求体带什么都覆盖不了
func (s *PostService) Update(ctx context.Context, id uint64, title, content string) (*model.Post, []uint64, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if title != "" {
		post.Title = title
	}
	post.Content = content
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, nil, err
	}
	ids, err := s.comments.IDsByPost(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return post, ids, nil
}

func (s *PostService) Delete(ctx context.Context, id uint64) error {
	return s.repo.Delete(ctx, id)
}
