package model

import (
	"time"

	baseModel "footstep/pkg/model"
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Email           string           `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Nickname        string           `gorm:"size:50;not null;uniqueIndex" json:"nickname"`
	Password        string           `gorm:"size:255;not null" json:"-"` // bcrypt 哈希，不返回给前端
	ProfileImageURL *string          `json:"profileImageUrl"`
	Status          baseModel.Status `gorm:"size:16;not null;default:'NORMAL'" json:"status"`
	BannedUntil     *time.Time       `json:"bannedUntil"`
	LastSuspendedAt *time.Time       `json:"-"` // 举报计数窗口的起点
}

func (User) TableName() string { return "users" }

// IsWithdrawn 是否已注销
func (u *User) IsWithdrawn() bool {
	return u.Status == baseModel.StatusWithdrawn
}

// SuspendedAt 在 now 时刻是否处于封禁期
func (u *User) SuspendedAt(now time.Time) bool {
	return u.BannedUntil != nil && u.BannedUntil.After(now)
}

// BanExpiredAt 封禁记录存在但已过期
func (u *User) BanExpiredAt(now time.Time) bool {
	return u.BannedUntil != nil && !u.BannedUntil.After(now)
}

// ReportWindowStart 只统计上次封禁之后的举报，没有封禁过时为零值（全部）
func (u *User) ReportWindowStart() time.Time {
	if u.LastSuspendedAt == nil {
		return time.Time{}
	}
	return *u.LastSuspendedAt
}
