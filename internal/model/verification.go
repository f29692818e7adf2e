package model

import (
	"fmt"
	"time"
)

// Purpose 验证码用途
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email_verify"
	PurposePasswordReset Purpose = "password_reset"
)

func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeEmailVerify, PurposePasswordReset:
		return Purpose(s), nil
	}
	return "", fmt.Errorf("unknown purpose %q", s)
}

// VerificationCode 每个 (purpose, user) 最多一条未消费未过期的记录。
// 存在 redis，物理 TTL 比逻辑过期时间长，过期/已消费的状态仍可读到。
type VerificationCode struct {
	UserID    uint64    `json:"user_id"`
	Purpose   Purpose   `json:"purpose"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}
