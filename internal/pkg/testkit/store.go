// Package testkit 提供内存版的仓储、事务、会话与通知实现，供跨模块的业务场景测试使用
package testkit

import (
	"context"
	"sort"
	"sync"
	"time"

	postingModel "footstep/internal/domain/posting/model"
	reportModel "footstep/internal/domain/report/model"
	userModel "footstep/internal/domain/user/model"
	"footstep/internal/pkg/notify"

	"gorm.io/gorm"
)

// Store 内存数据集，所有仓储共享
type Store struct {
	mu sync.Mutex
	id uint

	users    map[uint]*userModel.User
	postings map[uint]*postingModel.Posting
	comments map[uint]*postingModel.Comment
	likes    map[uint]*postingModel.Like
	places   map[uint]*postingModel.Place
	reports  []reportModel.Report

	// Now 写入 CreatedAt 用的时钟
	Now func() time.Time
	// Fail 返回非 nil 时让对应集合中该 ID 的写操作失败
	Fail func(collection string, id uint) error
}

func NewStore() *Store {
	return &Store{
		users:    map[uint]*userModel.User{},
		postings: map[uint]*postingModel.Posting{},
		comments: map[uint]*postingModel.Comment{},
		likes:    map[uint]*postingModel.Like{},
		places:   map[uint]*postingModel.Place{},
		Now:      time.Now,
	}
}

func (s *Store) nextID() uint {
	s.id++
	return s.id
}

func (s *Store) fail(collection string, id uint) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(collection, id)
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s} }
func (s *Store) Postings() *PostingRepo { return &PostingRepo{s} }
func (s *Store) Comments() *CommentRepo { return &CommentRepo{s} }
func (s *Store) Likes() *LikeRepo       { return &LikeRepo{s} }
func (s *Store) Places() *PlaceRepo     { return &PlaceRepo{s} }
func (s *Store) Reports() *ReportRepo   { return &ReportRepo{s} }

// User 读取当前状态的副本
func (s *Store) User(id uint) userModel.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

// Posting 读取当前状态的副本
func (s *Store) Posting(id uint) postingModel.Posting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.postings[id]
}

// Comment 读取当前状态的副本
func (s *Store) Comment(id uint) postingModel.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.comments[id]
}

// LikeCount 所有点赞行数（含失效）
func (s *Store) LikeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes)
}

// ReportCount 举报行数
func (s *Store) ReportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func newestFirst(postings []postingModel.Posting) {
	sort.Slice(postings, func(i, j int) bool {
		if !postings[i].RecordDate.Equal(postings[j].RecordDate) {
			return postings[i].RecordDate.After(postings[j].RecordDate)
		}
		return postings[i].ID > postings[j].ID
	})
}

func sortedIDs(ids []uint) []uint {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tx 直接执行 fn，不提供回滚
type Tx struct{}

func (Tx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Sessions 内存会话存储
type Sessions struct {
	mu     sync.Mutex
	tokens map[uint]map[string]struct{}
	// Invalidated 记录被整体作废的用户
	Invalidated []uint
}

func NewSessions() *Sessions {
	return &Sessions{tokens: map[uint]map[string]struct{}{}}
}

func (s *Sessions) Save(_ context.Context, userID uint, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens[userID] == nil {
		s.tokens[userID] = map[string]struct{}{}
	}
	s.tokens[userID][tokenID] = struct{}{}
	return nil
}

func (s *Sessions) Valid(_ context.Context, userID uint, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[userID][tokenID]
	return ok, nil
}

func (s *Sessions) Revoke(_ context.Context, userID uint, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens[userID], tokenID)
	return nil
}

func (s *Sessions) InvalidateAll(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	s.Invalidated = append(s.Invalidated, userID)
	return nil
}

// Notices 记录投递的通知
type Notices struct {
	mu  sync.Mutex
	All []notify.Notice
}

func (n *Notices) Dispatch(notice notify.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.All = append(n.All, notice)
}

// Kinds 按投递顺序返回通知类型
func (n *Notices) Kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]notify.Kind, 0, len(n.All))
	for _, notice := range n.All {
		kinds = append(kinds, notice.Kind)
	}
	return kinds
}

var errNotFound = gorm.ErrRecordNotFound
