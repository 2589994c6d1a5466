package repository

import (
	"context"
	"time"

	"footstep/internal/domain/report/model"
	"footstep/pkg/database"

	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	FindByReporter(ctx context.Context, reporterID uint) ([]model.Report, error)
	// CountAgainstAuthor 统计 since 之后针对该作者内容的举报条数，重复举报逐条计入；since 为零值时不限时间
	CountAgainstAuthor(ctx context.Context, authorID uint, since time.Time) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return database.Conn(ctx, r.db).Create(report).Error
}

func (r *reportRepository) FindByReporter(ctx context.Context, reporterID uint) ([]model.Report, error) {
	var reports []model.Report
	err := database.Conn(ctx, r.db).
		Where("reporter_id = ?", reporterID).
		Order("id").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) CountAgainstAuthor(ctx context.Context, authorID uint, since time.Time) (int64, error) {
	query := database.Conn(ctx, r.db).Model(&model.Report{}).
		Where("target_owner_id = ?", authorID)
	if !since.IsZero() {
		query = query.Where("created_at > ?", since)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
