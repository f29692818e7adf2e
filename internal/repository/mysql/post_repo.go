package mysql

import (
	"context"
	"errors"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &post, err
}

func (r *PostRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// Update 只落可编辑字段，评论归属由 comments 表推导，不可能被这里覆盖
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Model(post).
		Select("title", "content").
		Updates(map[string]any{
			"title":   post.Title,
			"content": post.Content,
		}).Error
}

// Delete 连同帖子下的评论一起删，同一事务
func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error
	})
}
