package repository

import (
	"context"
	"time"

	"footstep/internal/domain/posting/model"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// PostingRepository 接口定义
type PostingRepository interface {
	Create(ctx context.Context, posting *model.Posting) error
	GetByID(ctx context.Context, id uint) (*model.Posting, error)
	Update(ctx context.Context, posting *model.Posting) error
	// Remove 软删除，已删除的返回 false
	Remove(ctx context.Context, id uint) (bool, error)

	FindByOwner(ctx context.Context, userID uint) ([]model.Posting, error)
	FindByOwnerOnDate(ctx context.Context, userID uint, date time.Time) ([]model.Posting, error)
	FindByOwnerInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Posting, error)
	FindFeed(ctx context.Context, viewerID uint, bl *baseModel.Blacklist) ([]model.Posting, error)
	FindPublicByUser(ctx context.Context, userID uint, bl *baseModel.Blacklist) ([]model.Posting, error)

	CountNormalByUser(ctx context.Context, userID uint) (int64, error)
	ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error)
}

// postingRepository 实现
type postingRepository struct {
	db *gorm.DB
}

// NewPostingRepository 创建新的仓库实例
func NewPostingRepository(db *gorm.DB) PostingRepository {
	return &postingRepository{db: db}
}

func (r *postingRepository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db)
}

// Create 创建足迹
func (r *postingRepository) Create(ctx context.Context, posting *model.Posting) error {
	return r.conn(ctx).Create(posting).Error
}

// GetByID 根据ID获取足迹（不区分状态）
func (r *postingRepository) GetByID(ctx context.Context, id uint) (*model.Posting, error) {
	var posting model.Posting
	if err := r.conn(ctx).Where("id = ?", id).First(&posting).Error; err != nil {
		return nil, err
	}
	return &posting, nil
}

// Update 更新足迹
func (r *postingRepository) Update(ctx context.Context, posting *model.Posting) error {
	return r.conn(ctx).Save(posting).Error
}

func (r *postingRepository) Remove(ctx context.Context, id uint) (bool, error) {
	res := r.conn(ctx).Model(&model.Posting{}).
		Where("id = ? AND status = ?", id, baseModel.StatusNormal).
		Update("status", baseModel.StatusRemoved)
	return res.RowsAffected > 0, res.Error
}

// FindByOwner 自己的正常足迹，包含私密
func (r *postingRepository) FindByOwner(ctx context.Context, userID uint) ([]model.Posting, error) {
	var postings []model.Posting
	err := r.conn(ctx).
		Scopes(scopeNormal("postings"), newestFirst).
		Where("postings.user_id = ?", userID).
		Find(&postings).Error
	return postings, err
}

func (r *postingRepository) FindByOwnerOnDate(ctx context.Context, userID uint, date time.Time) ([]model.Posting, error) {
	var postings []model.Posting
	err := r.conn(ctx).
		Scopes(scopeNormal("postings"), newestFirst).
		Where("postings.user_id = ? AND postings.record_date = ?", userID, baseModel.TruncateDay(date)).
		Find(&postings).Error
	return postings, err
}

// FindByOwnerInRange 日期闭区间
func (r *postingRepository) FindByOwnerInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Posting, error) {
	var postings []model.Posting
	err := r.conn(ctx).
		Scopes(scopeNormal("postings"), newestFirst).
		Where("postings.user_id = ?", userID).
		Where("postings.record_date BETWEEN ? AND ?", baseModel.TruncateDay(start), baseModel.TruncateDay(end)).
		Find(&postings).Error
	return postings, err
}

// FindFeed 其他用户的公开可见足迹
func (r *postingRepository) FindFeed(ctx context.Context, viewerID uint, bl *baseModel.Blacklist) ([]model.Posting, error) {
	var postings []model.Posting
	err := r.conn(ctx).
		Scopes(scopeNormal("postings"), scopePublic, scopeNotBlacklisted(bl), newestFirst).
		Where("postings.user_id <> ?", viewerID).
		Find(&postings).Error
	return postings, err
}

// FindPublicByUser 指定用户的公开可见足迹
func (r *postingRepository) FindPublicByUser(ctx context.Context, userID uint, bl *baseModel.Blacklist) ([]model.Posting, error) {
	var postings []model.Posting
	err := r.conn(ctx).
		Scopes(scopeNormal("postings"), scopePublic, scopeNotBlacklisted(bl), newestFirst).
		Where("postings.user_id = ?", userID).
		Find(&postings).Error
	return postings, err
}

func (r *postingRepository) CountNormalByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&model.Posting{}).
		Scopes(scopeNormal("postings")).
		Where("postings.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListNormalIDsByOwner 级联时逐条处理
func (r *postingRepository) ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.conn(ctx).Model(&model.Posting{}).
		Scopes(scopeNormal("postings")).
		Where("postings.user_id = ?", userID).
		Order("postings.id").
		Pluck("postings.id", &ids).Error
	return ids, err
}
