package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	CodeKeyPrefix = "evc:code"

	// 物理 TTL 是逻辑有效期的两倍：过期/已消费的记录在一段时间内
	// 仍然读得到，校验时才分得清 Expired、AlreadyConsumed 和 NotFound
	physTTLFactor = 2
)

// consumeScript 原子消费：记录还在、code 没被新一轮生成替换、
// 且尚未消费时才置 consumed，其余情况把竞态结果返回给调用方
var consumeScript = redis.NewScript(`
local code = redis.call("HGET", KEYS[1], "code")
if not code then
  return -1
end
if code ~= ARGV[1] then
  return -2
end
if redis.call("HGET", KEYS[1], "consumed") == "1" then
  return 0
end
redis.call("HSET", KEYS[1], "consumed", "1")
return 1
`)

// VerificationRepository 验证码存储：每个 (purpose, user) 一个 hash 键
type VerificationRepository struct{}

func codeKey(purpose model.Purpose, userID uint64) string {
	return fmt.Sprintf("%s:%s:%d", CodeKeyPrefix, purpose, userID)
}

// Put 整键覆盖写入，天然使同一 (purpose, user) 的旧码失效
func (r *VerificationRepository) Put(ctx context.Context, rec *model.VerificationCode) error {
	key := codeKey(rec.Purpose, rec.UserID)
	physTTL := rec.ExpiresAt.Sub(rec.CreatedAt) * physTTLFactor
	if physTTL <= 0 {
		physTTL = time.Minute
	}
	_, err := Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, map[string]any{
			"user_id":    rec.UserID,
			"purpose":    string(rec.Purpose),
			"code":       rec.Code,
			"created_at": rec.CreatedAt.Unix(),
			"expires_at": rec.ExpiresAt.Unix(),
			"consumed":   boolField(rec.Consumed),
		})
		p.Expire(ctx, key, physTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: put code: %v", apperr.ErrStore, err)
	}
	return nil
}

func (r *VerificationRepository) Get(ctx context.Context, purpose model.Purpose, userID uint64) (*model.VerificationCode, error) {
	fields, err := Client.HGetAll(ctx, codeKey(purpose, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get code: %v", apperr.ErrStore, err)
	}
	if len(fields) == 0 {
		return nil, apperr.ErrNotFound
	}
	return decodeRecord(fields, purpose, userID)
}

// decodeRecord 坏记录报 ErrStore，不能解析成纪元时间混成"已过期"
func decodeRecord(fields map[string]string, purpose model.Purpose, userID uint64) (*model.VerificationCode, error) {
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode created_at: %v", apperr.ErrStore, err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode expires_at: %v", apperr.ErrStore, err)
	}
	return &model.VerificationCode{
		UserID:    userID,
		Purpose:   purpose,
		Code:      fields["code"],
		CreatedAt: time.Unix(createdAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
		Consumed:  fields["consumed"] == "1",
	}, nil
}

// Consume 标记已消费。并发下按脚本返回值区分：
// 记录没了按 NotFound，输给并发消费按 AlreadyConsumed，
// 输给新一轮生成（存的码已经换了）按 Mismatch
func (r *VerificationRepository) Consume(ctx context.Context, purpose model.Purpose, userID uint64, code string) error {
	res, err := consumeScript.Run(ctx, Client, []string{codeKey(purpose, userID)}, code).Int()
	if err != nil {
		return fmt.Errorf("%w: consume code: %v", apperr.ErrStore, err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return apperr.ErrAlreadyConsumed
	case -2:
		return apperr.ErrMismatch
	default:
		return apperr.ErrNotFound
	}
}

func (r *VerificationRepository) Delete(ctx context.Context, purpose model.Purpose, userID uint64) error {
	if err := Client.Del(ctx, codeKey(purpose, userID)).Err(); err != nil {
		return fmt.Errorf("%w: delete code: %v", apperr.ErrStore, err)
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
