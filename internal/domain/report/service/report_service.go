package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	moderation "footstep/internal/domain/moderation/service"
	postingRepo "footstep/internal/domain/posting/repository"
	"footstep/internal/domain/report/model"
	"footstep/internal/domain/report/repository"
	"footstep/internal/pkg/identity"
	"footstep/pkg/apperr"
	"footstep/pkg/cache"
	"footstep/pkg/database"
	"footstep/pkg/metrics"
	baseModel "footstep/pkg/model"
	"footstep/pkg/response"
	"footstep/pkg/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BlacklistTTL 黑名单缓存时间
const BlacklistTTL = 5 * time.Minute

func blacklistKey(userID uint) string {
	return fmt.Sprintf("report:blacklist:%d", userID)
}

// ReportInput 举报输入
type ReportInput struct {
	TargetKind baseModel.TargetKind `json:"targetKind" validate:"oneof=POSTING COMMENT"`
	TargetID   uint                 `json:"targetId" validate:"required"`
	Reason     string               `json:"reason" validate:"notblank,max=500"`
}

// ReportService 举报记录与黑名单
type ReportService interface {
	// FileReport 举报成功但级联部分失败时，返回举报记录和 *apperr.PartialFailure
	FileReport(ctx context.Context, caller identity.Caller, input ReportInput) (*model.Report, error)
	BlacklistFor(ctx context.Context, userID uint) (*baseModel.Blacklist, error)
}

// AccountGuard 已注销或封禁中的账号不能举报
type AccountGuard interface {
	RequireActive(ctx context.Context, userID uint) error
}

// Deps 举报服务依赖
type Deps struct {
	Accounts AccountGuard
	Reports  repository.ReportRepository
	Postings postingRepo.PostingRepository
	Comments postingRepo.CommentRepository
	Policy   moderation.Policy
	Tx       database.Transactor
	Cache    cache.CacheService
	Metrics  *metrics.Collector
	Log      *zap.Logger
}

type reportService struct {
	Deps
}

func NewReportService(deps Deps) ReportService {
	return &reportService{Deps: deps}
}

// target 被举报内容的作者与标题快照
type target struct {
	ownerID uint
	title   string
}

func (s *reportService) FileReport(ctx context.Context, caller identity.Caller, input ReportInput) (*model.Report, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if err := s.Accounts.RequireActive(ctx, caller.UserID); err != nil {
		return nil, err
	}
	input.Reason = strings.TrimSpace(input.Reason)
	if err := validate.Struct(response.ErrReportInvalid, input); err != nil {
		return nil, err
	}

	var (
		report  *model.Report
		outcome *moderation.Outcome
		partial error
	)
	err := s.Tx.Transaction(ctx, func(ctx context.Context) error {
		t, err := s.resolveTarget(ctx, input.TargetKind, input.TargetID)
		if err != nil {
			return err
		}

		report = &model.Report{
			ReporterID:    caller.UserID,
			TargetKind:    input.TargetKind,
			TargetID:      input.TargetID,
			TargetOwnerID: t.ownerID,
			Reason:        input.Reason,
			Title:         t.title,
		}
		if err := s.Reports.Create(ctx, report); err != nil {
			return err
		}

		outcome, err = s.Policy.Evaluate(ctx, t.ownerID)
		var pf *apperr.PartialFailure
		if errors.As(err, &pf) {
			// 已完成的级联保持提交
			partial = err
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordReport(string(input.TargetKind))
	s.invalidateBlacklist(ctx, caller.UserID)
	s.Policy.Settle(ctx, outcome, moderation.ReportNotice{Title: report.Title, Reason: report.Reason})

	s.Log.Info("report filed",
		zap.Uint("report_id", report.ID),
		zap.Uint("reporter_id", caller.UserID),
		zap.String("target_kind", string(report.TargetKind)),
		zap.Uint("target_id", report.TargetID),
		zap.Bool("suspended", outcome != nil && outcome.Suspended))
	return report, partial
}

// resolveTarget 目标不存在时 NotFound；已下架的内容仍可被举报
func (s *reportService) resolveTarget(ctx context.Context, kind baseModel.TargetKind, id uint) (*target, error) {
	switch kind {
	case baseModel.TargetPosting:
		posting, err := s.Postings.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		return &target{ownerID: posting.UserID, title: posting.Title}, nil
	case baseModel.TargetComment:
		comment, err := s.Comments.GetByID(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		return &target{ownerID: comment.UserID}, nil
	default:
		return nil, apperr.Validation(response.ErrReportInvalid, "unknown target kind")
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(response.ErrReportTargetNotFound, "report target not found")
	}
	return err
}

// BlacklistFor 先读缓存，未命中时从举报记录构建
func (s *reportService) BlacklistFor(ctx context.Context, userID uint) (*baseModel.Blacklist, error) {
	if userID == 0 {
		return baseModel.EmptyBlacklist(), nil
	}

	key := blacklistKey(userID)
	bl := baseModel.NewBlacklist()
	err := s.Cache.Get(ctx, key, bl)
	if err == nil {
		s.Metrics.RecordBlacklistCache(true)
		return bl, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.Log.Warn("blacklist cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	s.Metrics.RecordBlacklistCache(false)

	reports, err := s.Reports.FindByReporter(ctx, userID)
	if err != nil {
		return nil, err
	}
	bl = baseModel.NewBlacklist()
	for _, r := range reports {
		bl.Add(r.TargetKind, r.TargetID, r.TargetOwnerID)
	}

	// 事务内读到的结果可能尚未提交，不写缓存
	if !database.InTransaction(ctx) {
		if err := s.Cache.Set(ctx, key, bl, BlacklistTTL); err != nil {
			s.Log.Warn("blacklist cache write failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return bl, nil
}

func (s *reportService) invalidateBlacklist(ctx context.Context, userID uint) {
	if err := s.Cache.Delete(ctx, blacklistKey(userID)); err != nil {
		s.Log.Error("blacklist cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
