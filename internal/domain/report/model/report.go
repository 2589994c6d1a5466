package model

import (
	baseModel "footstep/pkg/model"
)

// Report 举报记录，只追加不修改
type Report struct {
	baseModel.BaseModel
	ReporterID uint                 `gorm:"not null;index:idx_reports_reporter" json:"reporterId"`
	TargetKind baseModel.TargetKind `gorm:"size:16;not null" json:"targetKind"`
	TargetID   uint                 `gorm:"not null" json:"targetId"`
	// TargetOwnerID 举报时目标内容的作者，内容归属不会变化
	TargetOwnerID uint   `gorm:"not null;index:idx_reports_owner" json:"targetOwnerId"`
	Reason        string `gorm:"size:500;not null" json:"reason"`
	Title         string `gorm:"size:100" json:"title"` // 发布标题快照，评论为空
}

func (Report) TableName() string { return "reports" }
