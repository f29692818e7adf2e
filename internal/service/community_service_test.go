package service

import (
	"context"
	"testing"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
	"Trek_Community/internal/pkg"
	"Trek_Community/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	events []pkg.Event
}

func (p *fakeProducer) Publish(ctx context.Context, e pkg.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newCommunityFixture(t *testing.T) (*CommunityService, *memory.Store, *fakeProducer, *model.User) {
	store := memory.New()
	producer := &fakeProducer{}
	svc := NewCommunityService(store.Communities(), store.Members(), store.Users(), producer, zerolog.Nop())

	creator := &model.User{Username: "creator", Password: "x", Email: "creator@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), creator))
	return svc, store, producer, creator
}

func addUser(t *testing.T, store *memory.Store, name string) *model.User {
	user := &model.User{Username: name, Password: "x", Email: name + "@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestCommunity_CreateAddsCreatorAsMember(t *testing.T) {
	svc, _, _, creator := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, creator.ID, "Hikers", "hill walks", true)
	require.NoError(t, err)
	assert.NotZero(t, community.ID)

	_, members, err := svc.Get(ctx, community.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{creator.ID}, members)
}

func TestCommunity_CreateDuplicateName(t *testing.T) {
	svc, _, _, creator := newCommunityFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, creator.ID, "Hikers", "", true)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestCommunity_AddMemberIdempotent(t *testing.T) {
	svc, store, _, creator := newCommunityFixture(t)
	ctx := context.Background()
	guest := addUser(t, store, "guest")

	community, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)

	_, added, err := svc.AddMember(ctx, community.ID, guest.Email)
	require.NoError(t, err)
	assert.True(t, added)

	_, members, err := svc.Get(ctx, community.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// 第二次同样的请求是 no-op：不报错，成员数不变
	_, added, err = svc.AddMember(ctx, community.ID, guest.Email)
	require.NoError(t, err)
	assert.False(t, added)

	_, members, err = svc.Get(ctx, community.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestCommunity_AddMemberPublishesOnce(t *testing.T) {
	svc, store, producer, creator := newCommunityFixture(t)
	ctx := context.Background()
	guest := addUser(t, store, "guest")

	community, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)

	_, _, err = svc.AddMember(ctx, community.ID, guest.Email)
	require.NoError(t, err)
	_, _, err = svc.AddMember(ctx, community.ID, guest.Email)
	require.NoError(t, err)

	// no-op 的第二次不发事件；信封带事件类型和实体 id
	require.Len(t, producer.events, 1)
	e := producer.events[0]
	assert.Equal(t, EventMemberAdded, e.Kind)
	assert.Equal(t, community.ID, e.ID)
	assert.False(t, e.At.IsZero())
}

func TestCommunity_AddMemberUnknownEmail(t *testing.T) {
	svc, _, _, creator := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)

	_, _, err = svc.AddMember(ctx, community.ID, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommunity_AddMemberMissingCommunity(t *testing.T) {
	svc, store, _, _ := newCommunityFixture(t)
	guest := addUser(t, store, "guest")

	_, _, err := svc.AddMember(context.Background(), 9999, guest.Email)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommunity_UpdatePreservesMembers(t *testing.T) {
	svc, store, _, creator := newCommunityFixture(t)
	ctx := context.Background()
	guest := addUser(t, store, "guest")

	community, err := svc.Create(ctx, creator.ID, "Hikers", "old", true)
	require.NoError(t, err)
	_, _, err = svc.AddMember(ctx, community.ID, guest.Email)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, community.ID, "Trail Hikers", "new description", false)
	require.NoError(t, err)
	assert.Equal(t, "Trail Hikers", updated.Name)
	assert.False(t, updated.IsPublic)

	// 更新动不了成员列表
	_, members, err := svc.Get(ctx, community.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestCommunity_ListPublicExcludesJoined(t *testing.T) {
	svc, store, _, creator := newCommunityFixture(t)
	ctx := context.Background()
	guest := addUser(t, store, "guest")

	joined, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)
	open, err := svc.Create(ctx, creator.ID, "Climbers", "", true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, creator.ID, "Secret", "", false)
	require.NoError(t, err)

	_, _, err = svc.AddMember(ctx, joined.ID, guest.Email)
	require.NoError(t, err)

	list, err := svc.ListPublic(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)

	joinedList, err := svc.ListJoined(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, joinedList, 1)
	assert.Equal(t, joined.ID, joinedList[0].ID)
}

func TestCommunity_DeleteCascades(t *testing.T) {
	svc, store, _, creator := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)

	post := &model.Post{CommunityID: community.ID, AuthorID: creator.ID, Title: "t"}
	require.NoError(t, store.Posts().Create(ctx, post))
	comment := &model.Comment{PostID: post.ID, AuthorID: creator.ID, Content: "hi"}
	require.NoError(t, store.Comments().Create(ctx, comment))

	require.NoError(t, svc.Delete(ctx, community.ID))

	_, _, err = svc.Get(ctx, community.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = store.Posts().FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = store.Comments().FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.Delete(ctx, community.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommunity_Leave(t *testing.T) {
	svc, store, _, creator := newCommunityFixture(t)
	ctx := context.Background()
	guest := addUser(t, store, "guest")

	community, err := svc.Create(ctx, creator.ID, "Hikers", "", true)
	require.NoError(t, err)
	_, _, err = svc.AddMember(ctx, community.ID, guest.Email)
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, community.ID, guest.ID))

	_, members, err := svc.Get(ctx, community.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{creator.ID}, members)
}
