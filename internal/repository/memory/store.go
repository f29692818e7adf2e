// Package memory 内存实现，签名与 mysql/redis 仓储一致，供服务层测试使用。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
)

type Store struct {
	mu          sync.RWMutex
	nextID      uint64
	users       map[uint64]*model.User
	communities map[uint64]*model.Community
	members     []*model.CommunityMember
	posts       map[uint64]*model.Post
	comments    map[uint64]*model.Comment
	codes       map[string]*model.VerificationCode
}

func New() *Store {
	return &Store{
		users:       make(map[uint64]*model.User),
		communities: make(map[uint64]*model.Community),
		posts:       make(map[uint64]*model.Post),
		comments:    make(map[uint64]*model.Comment),
		codes:       make(map[string]*model.VerificationCode),
	}
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *UserStore            { return &UserStore{s} }
func (s *Store) Communities() *CommunityStore { return &CommunityStore{s} }
func (s *Store) Members() *MemberStore        { return &MemberStore{s} }
func (s *Store) Posts() *PostStore            { return &PostStore{s} }
func (s *Store) Comments() *CommentStore      { return &CommentStore{s} }
func (s *Store) Codes() *CodeStore            { return &CodeStore{s} }

// === users ===

type UserStore struct{ s *Store }

func (u *UserStore) Create(ctx context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.ErrAlreadyExists
		}
	}
	user.ID = u.s.id()
	user.CreatedAt = time.Now()
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}

func (u *UserStore) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (u *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if user.Username == username || user.Email == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (u *UserStore) UpdatePassword(ctx context.Context, user *model.User, newPassword string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	stored, ok := u.s.users[user.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Password = newPassword
	return nil
}

func (u *UserStore) MarkEmailVerified(ctx context.Context, id uint64) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	stored, ok := u.s.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.EmailVerified = true
	return nil
}

func (u *UserStore) FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var users []model.User
	for _, id := range ids {
		if user, ok := u.s.users[id]; ok {
			users = append(users, *user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// === communities ===

type CommunityStore struct{ s *Store }

func (c *CommunityStore) Create(ctx context.Context, community *model.Community) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, existing := range c.s.communities {
		if existing.Name == community.Name {
			return apperr.ErrAlreadyExists
		}
	}
	community.ID = c.s.id()
	community.CreatedAt = time.Now()
	cp := *community
	c.s.communities[community.ID] = &cp
	c.s.members = append(c.s.members, &model.CommunityMember{
		ID:          c.s.id(),
		CommunityID: community.ID,
		UserID:      community.CreatorID,
		Role:        1,
	})
	return nil
}

func (c *CommunityStore) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	community, ok := c.s.communities[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *community
	return &cp, nil
}

func (c *CommunityStore) FindByName(ctx context.Context, name string) (*model.Community, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	for _, community := range c.s.communities {
		if community.Name == name {
			cp := *community
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (c *CommunityStore) Update(ctx context.Context, community *model.Community) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	stored, ok := c.s.communities[community.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Name = community.Name
	stored.Description = community.Description
	stored.IsPublic = community.IsPublic
	return nil
}

func (c *CommunityStore) Delete(ctx context.Context, id uint64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.communities[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(c.s.communities, id)
	kept := c.s.members[:0]
	for _, m := range c.s.members {
		if m.CommunityID != id {
			kept = append(kept, m)
		}
	}
	c.s.members = kept
	for postID, post := range c.s.posts {
		if post.CommunityID != id {
			continue
		}
		for commentID, comment := range c.s.comments {
			if comment.PostID == postID {
				delete(c.s.comments, commentID)
			}
		}
		delete(c.s.posts, postID)
	}
	return nil
}

func (c *CommunityStore) ListPublicExcluding(ctx context.Context, userID uint64) ([]model.Community, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	joined := make(map[uint64]bool)
	for _, m := range c.s.members {
		if m.UserID == userID {
			joined[m.CommunityID] = true
		}
	}
	var list []model.Community
	for _, community := range c.s.communities {
		if community.IsPublic && !joined[community.ID] {
			list = append(list, *community)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (c *CommunityStore) ListJoined(ctx context.Context, userID uint64) ([]model.Community, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var list []model.Community
	for _, m := range c.s.members {
		if m.UserID == userID {
			if community, ok := c.s.communities[m.CommunityID]; ok {
				list = append(list, *community)
			}
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

// === members ===

type MemberStore struct{ s *Store }

func (m *MemberStore) Add(ctx context.Context, member *model.CommunityMember) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.members {
		if existing.CommunityID == member.CommunityID && existing.UserID == member.UserID {
			return false, nil
		}
	}
	member.ID = m.s.id()
	cp := *member
	m.s.members = append(m.s.members, &cp)
	return true, nil
}

func (m *MemberStore) Remove(ctx context.Context, communityID, userID uint64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	kept := m.s.members[:0]
	for _, existing := range m.s.members {
		if existing.CommunityID == communityID && existing.UserID == userID {
			continue
		}
		kept = append(kept, existing)
	}
	m.s.members = kept
	return nil
}

func (m *MemberStore) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, existing := range m.s.members {
		if existing.CommunityID == communityID && existing.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemberStore) MemberIDs(ctx context.Context, communityID uint64) ([]uint64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var ids []uint64
	for _, existing := range m.s.members {
		if existing.CommunityID == communityID {
			ids = append(ids, existing.UserID)
		}
	}
	return ids, nil
}

// === posts ===

type PostStore struct{ s *Store }

func (p *PostStore) Create(ctx context.Context, post *model.Post) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	post.ID = p.s.id()
	post.CreatedAt = time.Now()
	cp := *post
	p.s.posts[post.ID] = &cp
	return nil
}

func (p *PostStore) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	post, ok := p.s.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (p *PostStore) ListByCommunity(ctx context.Context, communityID uint64) ([]model.Post, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	var list []model.Post
	for _, post := range p.s.posts {
		if post.CommunityID == communityID {
			list = append(list, *post)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (p *PostStore) Update(ctx context.Context, post *model.Post) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	stored, ok := p.s.posts[post.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	return nil
}

func (p *PostStore) Delete(ctx context.Context, id uint64) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(p.s.posts, id)
	for commentID, comment := range p.s.comments {
		if comment.PostID == id {
			delete(p.s.comments, commentID)
		}
	}
	return nil
}

// === comments ===

type CommentStore struct{ s *Store }

func (c *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.posts[comment.PostID]; !ok {
		return apperr.ErrNotFound
	}
	comment.ID = c.s.id()
	comment.CreatedAt = time.Now()
	cp := *comment
	c.s.comments[comment.ID] = &cp
	return nil
}

func (c *CommentStore) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	comment, ok := c.s.comments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (c *CommentStore) IDsByPost(ctx context.Context, postID uint64) ([]uint64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var ids []uint64
	for _, comment := range c.s.comments {
		if comment.PostID == postID {
			ids = append(ids, comment.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (c *CommentStore) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var list []model.Comment
	for _, comment := range c.s.comments {
		if comment.PostID == postID {
			list = append(list, *comment)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (c *CommentStore) Delete(ctx context.Context, id uint64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.comments[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(c.s.comments, id)
	return nil
}

// === verification codes ===

type CodeStore struct{ s *Store }

func codeKey(purpose model.Purpose, userID uint64) string {
	return fmt.Sprintf("%s:%d", purpose, userID)
}

func (c *CodeStore) Put(ctx context.Context, rec *model.VerificationCode) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cp := *rec
	c.s.codes[codeKey(rec.Purpose, rec.UserID)] = &cp
	return nil
}

func (c *CodeStore) Get(ctx context.Context, purpose model.Purpose, userID uint64) (*model.VerificationCode, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	rec, ok := c.s.codes[codeKey(purpose, userID)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (c *CodeStore) Consume(ctx context.Context, purpose model.Purpose, userID uint64, code string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	rec, ok := c.s.codes[codeKey(purpose, userID)]
	if !ok {
		return apperr.ErrNotFound
	}
	// 存的码已被新一轮生成换掉
	if rec.Code != code {
		return apperr.ErrMismatch
	}
	if rec.Consumed {
		return apperr.ErrAlreadyConsumed
	}
	rec.Consumed = true
	return nil
}

func (c *CodeStore) Delete(ctx context.Context, purpose model.Purpose, userID uint64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.codes, codeKey(purpose, userID))
	return nil
}
