package model

import "sort"

// TargetKind 举报目标类型
type TargetKind string

const (
	TargetPosting TargetKind = "POSTING"
	TargetComment TargetKind = "COMMENT"
)

// sentinelID 保证 NOT IN 子句永远不为空
const sentinelID uint = 0

// Blacklist 某个查看者举报过的内容，按 (kind, id) 区分
// CommentAuthors 为其举报过的评论的作者，这些作者的评论对该查看者隐藏
type Blacklist struct {
	Postings       map[uint]struct{} `json:"postings"`
	Comments       map[uint]struct{} `json:"comments"`
	CommentAuthors map[uint]struct{} `json:"commentAuthors"`
}

// NewBlacklist 创建空黑名单
func NewBlacklist() *Blacklist {
	return &Blacklist{
		Postings:       map[uint]struct{}{},
		Comments:       map[uint]struct{}{},
		CommentAuthors: map[uint]struct{}{},
	}
}

// EmptyBlacklist 用于查看自己内容等不过滤的场景
func EmptyBlacklist() *Blacklist {
	return NewBlacklist()
}

// Add 记录一次举报，重复举报同一目标只保留一个
func (b *Blacklist) Add(kind TargetKind, targetID, ownerID uint) {
	switch kind {
	case TargetPosting:
		b.Postings[targetID] = struct{}{}
	case TargetComment:
		b.Comments[targetID] = struct{}{}
		if ownerID != 0 {
			b.CommentAuthors[ownerID] = struct{}{}
		}
	}
}

func (b *Blacklist) HasPosting(id uint) bool {
	if b == nil {
		return false
	}
	_, ok := b.Postings[id]
	return ok
}

func (b *Blacklist) HasComment(id uint) bool {
	if b == nil {
		return false
	}
	_, ok := b.Comments[id]
	return ok
}

func (b *Blacklist) HidesAuthor(userID uint) bool {
	if b == nil {
		return false
	}
	_, ok := b.CommentAuthors[userID]
	return ok
}

// Len 去重后的目标数
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Postings) + len(b.Comments)
}

// PostingIDs 用于 NOT IN，始终包含哨兵 0
func (b *Blacklist) PostingIDs() []uint {
	if b == nil {
		return []uint{sentinelID}
	}
	return withSentinel(b.Postings)
}

// CommentIDs 用于 NOT IN，始终包含哨兵 0
func (b *Blacklist) CommentIDs() []uint {
	if b == nil {
		return []uint{sentinelID}
	}
	return withSentinel(b.Comments)
}

// CommentAuthorIDs 用于 NOT IN，始终包含哨兵 0
func (b *Blacklist) CommentAuthorIDs() []uint {
	if b == nil {
		return []uint{sentinelID}
	}
	return withSentinel(b.CommentAuthors)
}

func withSentinel(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set)+1)
	ids = append(ids, sentinelID)
	for id := range set {
		if id != sentinelID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
