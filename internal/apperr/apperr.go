// Package apperr 统一的业务错误集合，边界处用 errors.Is 翻译成 HTTP 状态码。
package apperr

import "errors"

var (
	ErrInvalid         = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyExists   = errors.New("already exists")
	ErrExpired         = errors.New("code expired")
	ErrMismatch        = errors.New("code mismatch")
	ErrAlreadyConsumed = errors.New("code already consumed")
	ErrStore           = errors.New("store failure")
)
