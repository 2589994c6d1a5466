package repository

import (
	"footstep/internal/domain/posting/model"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// scopeNormal 只保留正常状态的行
func scopeNormal(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".status = ?", baseModel.StatusNormal)
	}
}

// scopeNotBlacklisted 排除查看者举报过的足迹
// PostingIDs 至少包含哨兵 0，NOT IN 不会退化成 NOT IN (NULL)
func scopeNotBlacklisted(bl *baseModel.Blacklist) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("postings.id NOT IN ?", bl.PostingIDs())
	}
}

// scopePublic 只保留公开足迹
func scopePublic(db *gorm.DB) *gorm.DB {
	return db.Where("postings.visibility = ?", model.VisibilityPublic)
}

// scopeCommentVisible 评论可见性：正常、未被举报、作者未被举报
func scopeCommentVisible(bl *baseModel.Blacklist) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(scopeNormal("comments")).
			Where("comments.id NOT IN ?", bl.CommentIDs()).
			Where("comments.user_id NOT IN ?", bl.CommentAuthorIDs())
	}
}

// newestFirst 列表排序
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("postings.record_date DESC").Order("postings.id DESC")
}
