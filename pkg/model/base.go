package model

import (
	"time"
)

// BaseModel 基础模型，使用自增主键
// 不使用 gorm.DeletedAt：本项目所有实体都通过 Status 软删除，行永远保留
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Status 通用状态
// 每种实体只用其中两个值：NORMAL 和对应的失效态
type Status string

const (
	StatusNormal    Status = "NORMAL"
	StatusInactive  Status = "INACTIVE"  // 评论、点赞
	StatusRemoved   Status = "REMOVED"   // 发布
	StatusWithdrawn Status = "WITHDRAWN" // 用户注销
)

// IsNormal 是否正常状态
func (s Status) IsNormal() bool {
	return s == StatusNormal
}

// DateLayout 记录日期格式（无时间部分）
const DateLayout = "2006-01-02"

// DateKey 把日期归一成 yyyy-mm-dd，用于按天统计
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDay 去掉时间部分
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
