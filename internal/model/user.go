package model

import "time"

type User struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Role          int       `gorm:"default:0" json:"role"`
	Email         string    `gorm:"uniqueIndex;size:64;not null" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
