package service

import (
	"context"
	"fmt"
	"strings"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"github.com/rs/zerolog"
)

const maxCommentLength = 2000

type CommentRepo interface {
	Create(ctx context.Context, cm *model.Comment) error
	FindByID(ctx context.Context, id uint64) (*model.Comment, error)
	IDsByPost(ctx context.Context, postID uint64) ([]uint64, error)
	ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error)
	Delete(ctx context.Context, id uint64) error
}

type CommentService struct {
	repo     CommentRepo
	producer Producer
	log      zerolog.Logger
}

func NewCommentService(repo CommentRepo, producer Producer, log zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, producer: producer, log: log}
}

// Create 帖子存在性检查和评论写入在仓储里同一事务内完成：
// 评论要么连同归属一起可见，要么整体失败
func (s *CommentService) Create(ctx context.Context, authorID, postID uint64, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: comment content required", apperr.ErrInvalid)
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment content too long", apperr.ErrInvalid)
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	publish(ctx, s.log, s.producer, EventCommentCreated, comment.ID, map[string]uint64{"post_id": postID, "author_id": authorID})
	return comment, nil
}

func (s *CommentService) Get(ctx context.Context, id uint64) (*model.Comment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CommentService) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

// Delete 评论删除不需要清理帖子侧：归属是查出来的，不会留悬挂引用
func (s *CommentService) Delete(ctx context.Context, id uint64) error {
	return s.repo.Delete(ctx, id)
}
