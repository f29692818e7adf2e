package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	UserTokenPrefix = "login:user:token"
	UserTokenTTL    = 30 * time.Minute
)

// UserRepository 单点登录的 token 固定：每个用户只保留一个有效 access token
type UserRepository struct{}

func tokenKey(usrID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, usrID)
}

func (r *UserRepository) AddUserToken(ctx context.Context, usrID uint64, token string) error {
	if err := Client.Set(ctx, tokenKey(usrID), token, UserTokenTTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *UserRepository) GetUserToken(ctx context.Context, usrID uint64) (string, error) {
	token, err := Client.Get(ctx, tokenKey(usrID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// ExtendUserToken 校验通过后顺延过期时间
func (r *UserRepository) ExtendUserToken(ctx context.Context, usrID uint64) error {
	if _, err := Client.Expire(ctx, tokenKey(usrID), UserTokenTTL).Result(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *UserRepository) DeleteUserToken(ctx context.Context, usrID uint64) error {
	if err := Client.Del(ctx, tokenKey(usrID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
