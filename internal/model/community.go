package model

import "time"

type Community struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatorID   uint64    `gorm:"not null;index" json:"creator_id"`
	IsPublic    bool      `gorm:"not null;default:true" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommunityMember 成员关系单独建表：更新社区的请求在结构上碰不到成员列表
type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"community_id"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"user_id"`
	Role        int       `gorm:"not null;default:0" json:"role"` // 0=member, 1=admin
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
