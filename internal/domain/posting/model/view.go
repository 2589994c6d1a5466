package model

import "time"

// LikeStat 某条足迹的点赞统计
type LikeStat struct {
	Count int64
	Liked bool // 查看者是否点过赞
}

// FeedItem 列表中的一条足迹
type FeedItem struct {
	PostingID    uint      `json:"postingId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	RecordDate   string    `json:"recordDate"`
	ImageURL     *string   `json:"imageUrl"`
	Visibility   int       `json:"visibility"`
	UserID       uint      `json:"userId"`
	Nickname     string    `json:"nickname,omitempty"`
	PlaceID      uint      `json:"placeId"`
	PlaceName    string    `json:"placeName,omitempty"`
	LikeCount    int64     `json:"likeCount"`
	IsLiked      bool      `json:"isLiked"`
	CommentCount int64     `json:"commentCount"`
	PostingCount int       `json:"postingCount"` // 当前列表中同一记录日期的足迹数
	CreatedAt    time.Time `json:"createdAt"`
}

// Gallery 自己的相册
type Gallery struct {
	Items             []FeedItem `json:"items"`
	DistinctDateCount int        `json:"distinctDateCount"`
}

// CommentView 详情页中的评论
type CommentView struct {
	CommentID uint      `json:"commentId"`
	Content   string    `json:"content"`
	UserID    uint      `json:"userId"`
	Nickname  string    `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Detail 足迹详情
type Detail struct {
	FeedItem
	Place    Place         `json:"place"`
	Comments []CommentView `json:"comments"`
}

// PlaceMarker 地图上的一个地点
type PlaceMarker struct {
	PlaceID   uint    `json:"placeId"`
	PlaceName string  `json:"placeName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EditInfo 编辑页回显
type EditInfo struct {
	PostingID  uint    `json:"postingId"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	RecordDate string  `json:"recordDate"`
	ImageURL   *string `json:"imageUrl"`
	Visibility int     `json:"visibility"`
	Place      Place   `json:"place"`
}
