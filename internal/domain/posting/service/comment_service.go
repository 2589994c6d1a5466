package service

import (
	"context"
	"errors"
	"strings"

	"footstep/internal/domain/posting/model"
	"footstep/internal/domain/posting/repository"
	"footstep/internal/pkg/identity"
	"footstep/pkg/apperr"
	baseModel "footstep/pkg/model"
	"footstep/pkg/response"
	"footstep/pkg/validate"

	"gorm.io/gorm"
)

// CommentInput 评论输入
type CommentInput struct {
	Content string `json:"content" validate:"notblank,max=500"`
}

type CommentService interface {
	AddComment(ctx context.Context, caller identity.Caller, postingID uint, input CommentInput) (*model.Comment, error)
	DeleteComment(ctx context.Context, caller identity.Caller, commentID uint) error
}

type commentService struct {
	postings  repository.PostingRepository
	comments  repository.CommentRepository
	blacklist BlacklistSource
	accounts  AccountGuard
}

func NewCommentService(postings repository.PostingRepository, comments repository.CommentRepository, blacklist BlacklistSource, accounts AccountGuard) CommentService {
	return &commentService{
		postings:  postings,
		comments:  comments,
		blacklist: blacklist,
		accounts:  accounts,
	}
}

// AddComment 只能评论自己可见的足迹
func (s *commentService) AddComment(ctx context.Context, caller identity.Caller, postingID uint, input CommentInput) (*model.Comment, error) {
	if err := activeCaller(ctx, s.accounts, caller); err != nil {
		return nil, err
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validate.Struct(response.ErrPostingInvalid, input); err != nil {
		return nil, err
	}

	if _, err := visiblePosting(ctx, s.postings, s.blacklist, caller, postingID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:   input.Content,
		Status:    baseModel.StatusNormal,
		UserID:    caller.UserID,
		PostingID: postingID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment 只有评论作者可以删除
func (s *commentService) DeleteComment(ctx context.Context, caller identity.Caller, commentID uint) error {
	if err := caller.Require(); err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(response.ErrCommentNotFound, "comment not found")
		}
		return err
	}
	if !comment.Status.IsNormal() {
		return apperr.NotFound(response.ErrCommentNotFound, "comment not found")
	}
	if comment.UserID != caller.UserID {
		return apperr.Forbidden(response.ErrNotCommentOwner, "not the author of this comment")
	}

	ok, err := s.comments.Deactivate(ctx, commentID)
	if err != nil {
		return err
	}
	if !ok {
		// 并发删除
		return apperr.NotFound(response.ErrCommentNotFound, "comment not found")
	}
	return nil
}

// visiblePosting 读取单条足迹并按查看者的黑名单判断可见性
func visiblePosting(ctx context.Context, postings repository.PostingRepository, blacklist BlacklistSource, caller identity.Caller, postingID uint) (*model.Posting, error) {
	posting, err := postings.GetByID(ctx, postingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(response.ErrPostingNotFound, "posting not found")
		}
		return nil, err
	}

	bl, err := blacklist.BlacklistFor(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !posting.VisibleTo(caller.UserID, bl) {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "posting not found")
	}
	return posting, nil
}
