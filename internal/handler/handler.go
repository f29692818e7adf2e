package handler

import (
	"errors"
	"net/http"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// fail 边界统一翻译：已知业务错误映射状态码，
// 其余只记日志，响应体给通用信息，不往外带内部原因
func fail(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "not found"})
	case errors.Is(err, apperr.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"msg": "already exists"})
	case errors.Is(err, apperr.ErrMismatch):
		c.JSON(http.StatusForbidden, gin.H{"msg": "code mismatch"})
	case errors.Is(err, apperr.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"msg": "code expired"})
	case errors.Is(err, apperr.ErrAlreadyConsumed):
		c.JSON(http.StatusGone, gin.H{"msg": "code already used"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "an error occurred"})
	}
}

func currentUserID(c *gin.Context) uint64 {
	v, _ := c.Get(middleware.ContextUserIDKey)
	id, _ := v.(uint64)
	return id
}
