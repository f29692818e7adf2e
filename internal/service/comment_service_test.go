package service

import (
	"context"
	"strings"
	"testing"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
	"Trek_Community/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentFixture(t *testing.T) (*CommentService, *memory.Store, *model.Post) {
	store := memory.New()
	svc := NewCommentService(store.Comments(), nil, zerolog.Nop())

	ctx := context.Background()
	post := &model.Post{CommunityID: 1, AuthorID: 1, Title: "t"}
	require.NoError(t, store.Posts().Create(ctx, post))
	return svc, store, post
}

func TestComment_CreateRequiresPost(t *testing.T) {
	svc, _, _ := newCommentFixture(t)

	_, err := svc.Create(context.Background(), 1, 9999, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComment_CreateValidation(t *testing.T) {
	svc, _, post := newCommentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, post.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.Create(ctx, 1, post.ID, strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestComment_DeleteLeavesNoDanglingBacklink(t *testing.T) {
	svc, store, post := newCommentFixture(t)
	ctx := context.Background()

	c1, err := svc.Create(ctx, 1, post.ID, "first")
	require.NoError(t, err)
	c2, err := svc.Create(ctx, 1, post.ID, "second")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c1.ID))

	// 归属是查出来的：删除后列表立即一致，没有悬挂 id
	ids, err := store.Comments().IDsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{c2.ID}, ids)

	err = svc.Delete(ctx, c1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComment_ListByPost(t *testing.T) {
	svc, _, post := newCommentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, post.ID, "first")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, post.ID, "second")
	require.NoError(t, err)

	list, err := svc.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
}
