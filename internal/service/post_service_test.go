package service

import (
	"context"
	"testing"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
	"Trek_Community/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostFixture(t *testing.T) (*PostService, *CommentService, *memory.Store, *model.Community, *model.User) {
	store := memory.New()
	log := zerolog.Nop()
	postSvc := NewPostService(store.Posts(), store.Communities(), store.Comments(), nil, log)
	commentSvc := NewCommentService(store.Comments(), nil, log)

	ctx := context.Background()
	author := &model.User{Username: "author", Password: "x", Email: "author@example.com"}
	require.NoError(t, store.Users().Create(ctx, author))
	community := &model.Community{Name: "Hikers", CreatorID: author.ID, IsPublic: true}
	require.NoError(t, store.Communities().Create(ctx, community))
	return postSvc, commentSvc, store, community, author
}

func TestPost_CreateRequiresCommunity(t *testing.T) {
	postSvc, _, _, _, author := newPostFixture(t)

	_, err := postSvc.Create(context.Background(), author.ID, 9999, "title", "body")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPost_CreateStartsWithNoComments(t *testing.T) {
	postSvc, _, _, community, author := newPostFixture(t)
	ctx := context.Background()

	post, err := postSvc.Create(ctx, author.ID, community.ID, "first hike", "we went up")
	require.NoError(t, err)

	_, comments, err := postSvc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestPost_UpdatePreservesComments(t *testing.T) {
	postSvc, commentSvc, _, community, author := newPostFixture(t)
	ctx := context.Background()

	post, err := postSvc.Create(ctx, author.ID, community.ID, "first hike", "body")
	require.NoError(t, err)

	c1, err := commentSvc.Create(ctx, author.ID, post.ID, "nice")
	require.NoError(t, err)
	c2, err := commentSvc.Create(ctx, author.ID, post.ID, "great")
	require.NoError(t, err)

	// 编辑只动标题正文，评论归属在编辑之后原样可见
	updated, comments, err := postSvc.Update(ctx, post.ID, "renamed hike", "new body")
	require.NoError(t, err)
	assert.Equal(t, "renamed hike", updated.Title)
	assert.Equal(t, []uint64{c1.ID, c2.ID}, comments)
}

func TestPost_DeleteCascadesComments(t *testing.T) {
	postSvc, commentSvc, store, community, author := newPostFixture(t)
	ctx := context.Background()

	post, err := postSvc.Create(ctx, author.ID, community.ID, "t", "b")
	require.NoError(t, err)
	comment, err := commentSvc.Create(ctx, author.ID, post.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, postSvc.Delete(ctx, post.ID))

	_, _, err = postSvc.Get(ctx, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = store.Comments().FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = postSvc.Delete(ctx, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPost_ListByCommunity(t *testing.T) {
	postSvc, _, _, community, author := newPostFixture(t)
	ctx := context.Background()

	_, err := postSvc.ListByCommunity(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = postSvc.Create(ctx, author.ID, community.ID, "one", "")
	require.NoError(t, err)
	_, err = postSvc.Create(ctx, author.ID, community.ID, "two", "")
	require.NoError(t, err)

	list, err := postSvc.ListByCommunity(ctx, community.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 新帖在前
	assert.Equal(t, "two", list[0].Title)
}

// 综合场景：建社区、重复加成员、发帖、评论挂到帖子上
func TestCommunityPostCommentScenario(t *testing.T) {
	store := memory.New()
	log := zerolog.Nop()
	communitySvc := NewCommunityService(store.Communities(), store.Members(), store.Users(), nil, log)
	postSvc := NewPostService(store.Posts(), store.Communities(), store.Comments(), nil, log)
	commentSvc := NewCommentService(store.Comments(), nil, log)
	ctx := context.Background()

	u1 := &model.User{Username: "u1", Password: "x", Email: "u1@example.com"}
	require.NoError(t, store.Users().Create(ctx, u1))

	c1, err := communitySvc.Create(ctx, u1.ID, "Hikers", "", true)
	require.NoError(t, err)

	_, added, err := communitySvc.AddMember(ctx, c1.ID, u1.Email)
	require.NoError(t, err)
	assert.False(t, added) // 创建者已经在里面

	_, members, err := communitySvc.Get(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{u1.ID}, members)

	p1, err := postSvc.Create(ctx, u1.ID, c1.ID, "hello", "")
	require.NoError(t, err)
	_, comments, err := postSvc.Get(ctx, p1.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	k1, err := commentSvc.Create(ctx, u1.ID, p1.ID, "hi")
	require.NoError(t, err)

	_, comments, err = postSvc.Get(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{k1.ID}, comments)
}
