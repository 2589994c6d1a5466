package model

import (
	"time"

	baseModel "footstep/pkg/model"
)

// 可见性
const (
	VisibilityPrivate = 0
	VisibilityPublic  = 1
)

// Posting 足迹
type Posting struct {
	baseModel.BaseModel
	Title      string           `gorm:"size:100;not null" json:"title"`
	Content    string           `gorm:"type:text;not null" json:"content"`
	RecordDate time.Time        `gorm:"type:date;not null;index" json:"recordDate"`
	ImageURL   *string          `json:"imageUrl"`
	Visibility int              `gorm:"not null" json:"visibility"`
	Status     baseModel.Status `gorm:"size:16;not null;default:'NORMAL';index" json:"status"`
	UserID     uint             `gorm:"not null;index" json:"userId"`
	PlaceID    uint             `gorm:"not null" json:"placeId"`
}

func (Posting) TableName() string { return "postings" }

// IsPublic 是否公开
func (p *Posting) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// OwnedBy 是否属于该用户
func (p *Posting) OwnedBy(userID uint) bool {
	return p.UserID == userID
}

// VisibleTo 单条读取时的可见性判断，和列表查询的 scope 保持一致
// 作者总能看到自己的正常足迹
func (p *Posting) VisibleTo(viewerID uint, bl *baseModel.Blacklist) bool {
	if !p.Status.IsNormal() {
		return false
	}
	if p.OwnedBy(viewerID) {
		return true
	}
	return p.IsPublic() && !bl.HasPosting(p.ID)
}

// Place 地点，以精确经纬度为唯一标识
type Place struct {
	baseModel.BaseModel
	Name      string  `gorm:"size:100;not null" json:"name"`
	Address   string  `gorm:"size:255;not null" json:"address"`
	Latitude  float64 `gorm:"not null;uniqueIndex:idx_places_coordinates" json:"latitude"`
	Longitude float64 `gorm:"not null;uniqueIndex:idx_places_coordinates" json:"longitude"`
}

func (Place) TableName() string { return "places" }

// Comment 评论
type Comment struct {
	baseModel.BaseModel
	Content   string           `gorm:"type:text;not null" json:"content"`
	Status    baseModel.Status `gorm:"size:16;not null;default:'NORMAL'" json:"status"`
	UserID    uint             `gorm:"not null;index" json:"userId"`
	PostingID uint             `gorm:"not null;index" json:"postingId"`
}

func (Comment) TableName() string { return "comments" }

// VisibleTo 评论可见性，调用方已确认所属足迹可见
func (c *Comment) VisibleTo(bl *baseModel.Blacklist) bool {
	return c.Status.IsNormal() && !bl.HasComment(c.ID) && !bl.HidesAuthor(c.UserID)
}

// Like 点赞，每个 (user, posting) 只有一行，通过状态切换
type Like struct {
	baseModel.BaseModel
	Status    baseModel.Status `gorm:"size:16;not null;default:'NORMAL'" json:"status"`
	UserID    uint             `gorm:"not null;uniqueIndex:idx_likes_user_posting" json:"userId"`
	PostingID uint             `gorm:"not null;uniqueIndex:idx_likes_user_posting;index" json:"postingId"`
}

func (Like) TableName() string { return "likes" }
