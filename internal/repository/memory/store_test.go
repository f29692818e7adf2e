package memory

import (
	"context"
	"testing"
	"time"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 消费分支与 redis 仓储一致：记录没了 NotFound，
// 码被新一轮生成替换 Mismatch，重复消费 AlreadyConsumed
func TestCodeStore_ConsumeBranches(t *testing.T) {
	store := New()
	codes := store.Codes()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := codes.Consume(ctx, model.PurposeEmailVerify, 7, "111111")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, codes.Put(ctx, &model.VerificationCode{
		UserID: 7, Purpose: model.PurposeEmailVerify, Code: "111111",
		CreatedAt: now, ExpiresAt: now.Add(15 * time.Minute),
	}))
	require.NoError(t, codes.Put(ctx, &model.VerificationCode{
		UserID: 7, Purpose: model.PurposeEmailVerify, Code: "222222",
		CreatedAt: now, ExpiresAt: now.Add(15 * time.Minute),
	}))

	// 拿着旧码来消费，输给了新一轮生成
	err = codes.Consume(ctx, model.PurposeEmailVerify, 7, "111111")
	assert.ErrorIs(t, err, apperr.ErrMismatch)

	require.NoError(t, codes.Consume(ctx, model.PurposeEmailVerify, 7, "222222"))
	err = codes.Consume(ctx, model.PurposeEmailVerify, 7, "222222")
	assert.ErrorIs(t, err, apperr.ErrAlreadyConsumed)
}
