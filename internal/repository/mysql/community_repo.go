package mysql

import (
	"context"
	"errors"
	"fmt"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{DB: db}
}

// Create 创建社区并让创建者以管理员身份加入，同一事务内完成
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("create community: %w", err)
		}
		member := &model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        1,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("add creator: %w", err)
		}
		return nil
	})
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).First(&community, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &community, err
}

func (r *CommunityRepository) FindByName(ctx context.Context, name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return &community, err
}

// Update 只落可编辑字段，成员关系在自己的表里，不受影响
func (r *CommunityRepository) Update(ctx context.Context, c *model.Community) error {
	return r.DB.WithContext(ctx).Model(c).
		Select("name", "description", "is_public").
		Updates(map[string]any{
			"name":        c.Name,
			"description": c.Description,
			"is_public":   c.IsPublic,
		}).Error
}

// Delete 级联删除：成员、帖子及帖子下的评论一并清掉
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		if err := tx.Where("post_id IN (?)",
			tx.Model(&model.Post{}).Select("id").Where("community_id = ?", id),
		).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		return tx.Where("community_id = ?", id).Delete(&model.CommunityMember{}).Error
	})
}

// ListPublicExcluding 公开社区里排除用户已加入的，一条 NOT IN 子查询搞定
func (r *CommunityRepository) ListPublicExcluding(ctx context.Context, userID uint64) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).
		Where("is_public = ?", true).
		Where("id NOT IN (?)",
			r.DB.Model(&model.CommunityMember{}).Select("community_id").Where("user_id = ?", userID),
		).
		Order("id desc").
		Find(&list).Error
	return list, err
}

func (r *CommunityRepository) ListJoined(ctx context.Context, userID uint64) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).
		Where("id IN (?)",
			r.DB.Model(&model.CommunityMember{}).Select("community_id").Where("user_id = ?", userID),
		).
		Order("id desc").
		Find(&list).Error
	return list, err
}
