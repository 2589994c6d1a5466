package repository

import (
	"context"

	"footstep/internal/domain/posting/model"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// LikeRepository 接口定义
type LikeRepository interface {
	GetByUserAndPosting(ctx context.Context, userID, postingID uint) (*model.Like, error)
	Create(ctx context.Context, like *model.Like) error
	SetStatus(ctx context.Context, id uint, status baseModel.Status) error
	// StatsFor 批量统计正常点赞数和查看者是否点赞
	StatsFor(ctx context.Context, postingIDs []uint, viewerID uint) (map[uint]model.LikeStat, error)
	CountNormal(ctx context.Context, postingID uint) (int64, error)

	ListIDsByOwner(ctx context.Context, userID uint) ([]uint, error)
	// Delete 物理删除，用于封禁和注销
	Delete(ctx context.Context, id uint) error
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db)
}

func (r *likeRepository) GetByUserAndPosting(ctx context.Context, userID, postingID uint) (*model.Like, error) {
	var like model.Like
	if err := r.conn(ctx).Where("user_id = ? AND posting_id = ?", userID, postingID).First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	return r.conn(ctx).Create(like).Error
}

func (r *likeRepository) SetStatus(ctx context.Context, id uint, status baseModel.Status) error {
	return r.conn(ctx).Model(&model.Like{}).Where("id = ?", id).Update("status", status).Error
}

func (r *likeRepository) StatsFor(ctx context.Context, postingIDs []uint, viewerID uint) (map[uint]model.LikeStat, error) {
	stats := make(map[uint]model.LikeStat, len(postingIDs))
	if len(postingIDs) == 0 {
		return stats, nil
	}

	var counts []postingCount
	err := r.conn(ctx).Model(&model.Like{}).
		Select("likes.posting_id AS posting_id, COUNT(*) AS total").
		Scopes(scopeNormal("likes")).
		Where("likes.posting_id IN ?", postingIDs).
		Group("likes.posting_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats[c.PostingID] = model.LikeStat{Count: c.Total}
	}

	var liked []uint
	err = r.conn(ctx).Model(&model.Like{}).
		Scopes(scopeNormal("likes")).
		Where("likes.posting_id IN ? AND likes.user_id = ?", postingIDs, viewerID).
		Pluck("likes.posting_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		s := stats[id]
		s.Liked = true
		stats[id] = s
	}
	return stats, nil
}

func (r *likeRepository) CountNormal(ctx context.Context, postingID uint) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&model.Like{}).
		Scopes(scopeNormal("likes")).
		Where("likes.posting_id = ?", postingID).
		Count(&count).Error
	return count, err
}

// ListIDsByOwner 该用户的全部点赞行，不区分状态
func (r *likeRepository) ListIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.conn(ctx).Model(&model.Like{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *likeRepository) Delete(ctx context.Context, id uint) error {
	return r.conn(ctx).Where("id = ?", id).Delete(&model.Like{}).Error
}
