package repository

import (
	"context"

	"footstep/internal/domain/posting/model"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// CommentRepository 接口定义
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uint) (*model.Comment, error)
	FindVisibleByPosting(ctx context.Context, postingID uint, bl *baseModel.Blacklist) ([]model.Comment, error)
	CountNormalByPostings(ctx context.Context, postingIDs []uint) (map[uint]int64, error)

	// Deactivate 已失效的返回 false
	Deactivate(ctx context.Context, id uint) (bool, error)
	DeactivateByPosting(ctx context.Context, postingID uint) (int64, error)
	ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db)
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.conn(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.conn(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindVisibleByPosting(ctx context.Context, postingID uint, bl *baseModel.Blacklist) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.conn(ctx).
		Scopes(scopeCommentVisible(bl)).
		Where("comments.posting_id = ?", postingID).
		Order("comments.id ASC").
		Find(&comments).Error
	return comments, err
}

type postingCount struct {
	PostingID uint
	Total     int64
}

// CountNormalByPostings 每条足迹的正常评论数，没有评论的不出现在结果中
func (r *commentRepository) CountNormalByPostings(ctx context.Context, postingIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postingIDs))
	if len(postingIDs) == 0 {
		return counts, nil
	}

	var rows []postingCount
	err := r.conn(ctx).Model(&model.Comment{}).
		Select("comments.posting_id AS posting_id, COUNT(*) AS total").
		Scopes(scopeNormal("comments")).
		Where("comments.posting_id IN ?", postingIDs).
		Group("comments.posting_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostingID] = row.Total
	}
	return counts, nil
}

func (r *commentRepository) Deactivate(ctx context.Context, id uint) (bool, error) {
	res := r.conn(ctx).Model(&model.Comment{}).
		Where("id = ? AND status = ?", id, baseModel.StatusNormal).
		Update("status", baseModel.StatusInactive)
	return res.RowsAffected > 0, res.Error
}

func (r *commentRepository) DeactivateByPosting(ctx context.Context, postingID uint) (int64, error) {
	res := r.conn(ctx).Model(&model.Comment{}).
		Where("posting_id = ? AND status = ?", postingID, baseModel.StatusNormal).
		Update("status", baseModel.StatusInactive)
	return res.RowsAffected, res.Error
}

func (r *commentRepository) ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.conn(ctx).Model(&model.Comment{}).
		Scopes(scopeNormal("comments")).
		Where("comments.user_id = ?", userID).
		Order("comments.id").
		Pluck("comments.id", &ids).Error
	return ids, err
}
