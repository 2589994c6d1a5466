package service

import (
	"context"
	"errors"
	"time"

	"footstep/internal/domain/user/repository"
	"footstep/pkg/apperr"
	"footstep/pkg/response"

	"gorm.io/gorm"
)

// AccountGuard 写操作前检查调用者账号：已注销或封禁期内一律拒绝
// 访问令牌在封禁后仍可能有效，不能只依赖令牌
type AccountGuard struct {
	repo repository.UserRepository
	now  func() time.Time
}

func NewAccountGuard(repo repository.UserRepository, now func() time.Time) *AccountGuard {
	if now == nil {
		now = time.Now
	}
	return &AccountGuard{repo: repo, now: now}
}

// RequireActive 用户不存在时 Unauthorized，已注销或封禁中时 Forbidden
func (g *AccountGuard) RequireActive(ctx context.Context, userID uint) error {
	user, err := g.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized(response.ErrUserNotFound, "caller account no longer exists")
		}
		return err
	}
	if user.IsWithdrawn() {
		return apperr.Forbidden(response.ErrUserWithdrawn, "account has been withdrawn")
	}
	if user.SuspendedAt(g.now()) {
		return apperr.Forbidden(response.ErrUserSuspended, "account is suspended until "+user.BannedUntil.UTC().Format(time.RFC3339))
	}
	return nil
}
