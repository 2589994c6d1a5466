package service

import (
	"context"
	"errors"

	"footstep/internal/domain/posting/model"
	"footstep/internal/domain/posting/repository"
	"footstep/internal/pkg/identity"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

type LikeService interface {
	// ToggleLike 切换点赞状态，返回切换后是否为点赞
	ToggleLike(ctx context.Context, caller identity.Caller, postingID uint) (bool, error)
	LikeCount(ctx context.Context, caller identity.Caller, postingID uint) (int64, error)
}

type likeService struct {
	postings  repository.PostingRepository
	likes     repository.LikeRepository
	blacklist BlacklistSource
	accounts  AccountGuard
	tx        database.Transactor
}

func NewLikeService(postings repository.PostingRepository, likes repository.LikeRepository, blacklist BlacklistSource, accounts AccountGuard, tx database.Transactor) LikeService {
	return &likeService{
		postings:  postings,
		likes:     likes,
		blacklist: blacklist,
		accounts:  accounts,
		tx:        tx,
	}
}

func (s *likeService) ToggleLike(ctx context.Context, caller identity.Caller, postingID uint) (bool, error) {
	if err := activeCaller(ctx, s.accounts, caller); err != nil {
		return false, err
	}
	if _, err := visiblePosting(ctx, s.postings, s.blacklist, caller, postingID); err != nil {
		return false, err
	}

	like, err := s.likes.GetByUserAndPosting(ctx, caller.UserID, postingID)
	if err == nil {
		return s.flip(ctx, like)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	// 首次点赞；插入放在 savepoint 中，唯一冲突时不污染外层事务
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.likes.Create(ctx, &model.Like{
			Status:    baseModel.StatusNormal,
			UserID:    caller.UserID,
			PostingID: postingID,
		})
	})
	if err == nil {
		return true, nil
	}
	if !database.IsUniqueViolation(err) {
		return false, err
	}

	// 并发请求已经插入了这一行，按已存在处理
	like, err = s.likes.GetByUserAndPosting(ctx, caller.UserID, postingID)
	if err != nil {
		return false, err
	}
	return s.flip(ctx, like)
}

func (s *likeService) flip(ctx context.Context, like *model.Like) (bool, error) {
	next := baseModel.StatusNormal
	if like.Status.IsNormal() {
		next = baseModel.StatusInactive
	}
	if err := s.likes.SetStatus(ctx, like.ID, next); err != nil {
		return false, err
	}
	return next.IsNormal(), nil
}

// LikeCount 可见足迹的正常点赞数
func (s *likeService) LikeCount(ctx context.Context, caller identity.Caller, postingID uint) (int64, error) {
	if err := caller.Require(); err != nil {
		return 0, err
	}
	if _, err := visiblePosting(ctx, s.postings, s.blacklist, caller, postingID); err != nil {
		return 0, err
	}
	return s.likes.CountNormal(ctx, postingID)
}
