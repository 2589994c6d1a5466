package service

import (
	"context"
	"errors"
	"time"

	postingRepo "footstep/internal/domain/posting/repository"
	reportRepo "footstep/internal/domain/report/repository"
	userModel "footstep/internal/domain/user/model"
	userRepo "footstep/internal/domain/user/repository"
	"footstep/internal/pkg/notify"
	"footstep/internal/pkg/session"
	"footstep/pkg/apperr"
	"footstep/pkg/database"
	"footstep/pkg/metrics"
	"footstep/pkg/response"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 级联操作名
const (
	OperationSuspend  = "suspend"
	OperationWithdraw = "withdraw"
)

// 级联涉及的集合
const (
	CollectionPostings = "postings"
	CollectionComments = "comments"
	CollectionLikes    = "likes"
)

// Config 封禁策略
type Config struct {
	ReportThreshold int
	BanDuration     time.Duration
}

// Outcome 一次举报评估的结果，提交后交给 Settle 发送通知
type Outcome struct {
	Author      *userModel.User
	ReportCount int64
	Suspended   bool
	BannedUntil time.Time
}

// ReportNotice 举报通知里展示的内容
type ReportNotice struct {
	Title  string
	Reason string
}

// Policy 举报阈值与封禁、注销级联
type Policy interface {
	// Evaluate 在举报事务中执行；级联部分失败时同时返回 Outcome 和 *apperr.PartialFailure
	Evaluate(ctx context.Context, authorID uint) (*Outcome, error)
	// Suspend 封禁并级联；已封禁或已注销时返回 Conflict
	Suspend(ctx context.Context, author *userModel.User) (time.Time, error)
	// Settle 事务提交后执行：作废会话、投递通知，失败只记日志
	Settle(ctx context.Context, outcome *Outcome, notice ReportNotice)
	// Withdraw 注销账号，自带事务
	Withdraw(ctx context.Context, userID uint) error
}

// Deps 策略依赖
type Deps struct {
	Users    userRepo.UserRepository
	Reports  reportRepo.ReportRepository
	Postings postingRepo.PostingRepository
	Comments postingRepo.CommentRepository
	Likes    postingRepo.LikeRepository
	Tx       database.Transactor
	Sessions session.Store
	Notices  notify.Dispatcher
	Metrics  *metrics.Collector
	Log      *zap.Logger
	// Now 为空时使用 time.Now
	Now func() time.Time
}

type policy struct {
	Deps
	cfg Config
	now func() time.Time
}

func NewPolicy(cfg Config, deps Deps) Policy {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &policy{Deps: deps, cfg: cfg, now: now}
}

func (p *policy) Evaluate(ctx context.Context, authorID uint) (*Outcome, error) {
	author, err := p.Users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Integrity(response.ErrReportInvalid, "owner of reported content is missing", err)
		}
		return nil, err
	}

	out := &Outcome{Author: author}
	if author.IsWithdrawn() {
		return out, nil
	}

	count, err := p.Reports.CountAgainstAuthor(ctx, author.ID, author.ReportWindowStart())
	if err != nil {
		return nil, err
	}
	out.ReportCount = count
	if count < int64(p.cfg.ReportThreshold) {
		return out, nil
	}

	until, err := p.Suspend(ctx, author)
	var partial *apperr.PartialFailure
	switch {
	case err == nil, errors.As(err, &partial):
		out.Suspended = true
		out.BannedUntil = until
		return out, err
	case errors.Is(err, apperr.ErrConflict):
		// 封禁期内再次越过阈值不延长封禁
		return out, nil
	default:
		return nil, err
	}
}

func (p *policy) Suspend(ctx context.Context, author *userModel.User) (time.Time, error) {
	now := p.now()
	if author.IsWithdrawn() || author.SuspendedAt(now) {
		return time.Time{}, apperr.Conflict(response.ErrAlreadySuspended, "user is already suspended")
	}

	until := now.Add(p.cfg.BanDuration)
	ok, err := p.Users.Suspend(ctx, author.ID, until, now)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, apperr.Conflict(response.ErrAlreadySuspended, "user is already suspended")
	}
	author.BannedUntil = &until
	author.LastSuspendedAt = &now

	p.Metrics.RecordSuspension()
	p.Log.Warn("user suspended",
		zap.Uint("user_id", author.ID),
		zap.Time("banned_until", until))

	return until, p.cascade(ctx, OperationSuspend, author.ID)
}

func (p *policy) Withdraw(ctx context.Context, userID uint) error {
	var cascadeErr error
	err := p.Tx.Transaction(ctx, func(ctx context.Context) error {
		ok, err := p.Users.Withdraw(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(response.ErrUserNotFound, "user not found")
		}

		cascadeErr = p.cascade(ctx, OperationWithdraw, userID)
		var partial *apperr.PartialFailure
		if cascadeErr != nil && !errors.As(cascadeErr, &partial) {
			return cascadeErr
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.Metrics.RecordWithdrawal()
	p.Log.Info("user withdrawn", zap.Uint("user_id", userID))
	p.invalidateSessions(ctx, userID)
	return cascadeErr
}

func (p *policy) Settle(ctx context.Context, out *Outcome, notice ReportNotice) {
	if out == nil || out.Author == nil {
		return
	}
	author := out.Author

	if out.Suspended {
		p.invalidateSessions(ctx, author.ID)
	}

	if !author.Status.IsNormal() || author.Email == "" {
		return
	}
	p.Notices.Dispatch(notify.Notice{
		Email: author.Email,
		Kind:  notify.KindReported,
		Params: map[string]string{
			notify.ParamNickname: author.Nickname,
			notify.ParamTitle:    notice.Title,
			notify.ParamReason:   notice.Reason,
		},
	})
	if out.Suspended {
		p.Notices.Dispatch(notify.Notice{
			Email: author.Email,
			Kind:  notify.KindSuspended,
			Params: map[string]string{
				notify.ParamNickname:    author.Nickname,
				notify.ParamBannedUntil: out.BannedUntil.UTC().Format(time.RFC3339),
			},
		})
	}
}

func (p *policy) invalidateSessions(ctx context.Context, userID uint) {
	if err := p.Sessions.InvalidateAll(ctx, userID); err != nil {
		p.Log.Error("failed to invalidate sessions", zap.Uint("user_id", userID), zap.Error(err))
	}
}
