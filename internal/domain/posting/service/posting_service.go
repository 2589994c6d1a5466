package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"footstep/internal/domain/posting/model"
	"footstep/internal/domain/posting/repository"
	"footstep/internal/pkg/identity"
	"footstep/internal/pkg/uploader"
	"footstep/pkg/apperr"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"
	"footstep/pkg/response"
	"footstep/pkg/validate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostingInput 上传和编辑共用的输入
type PostingInput struct {
	Title      string  `json:"title" form:"title" validate:"notblank,max=100"`
	Content    string  `json:"content" form:"content" validate:"notblank,max=2000"`
	RecordDate string  `json:"recordDate" form:"recordDate" validate:"pastdate"`
	PlaceName  string  `json:"placeName" form:"placeName" validate:"notblank,max=100"`
	Address    string  `json:"address" form:"address" validate:"notblank,max=255"`
	Latitude   float64 `json:"latitude" form:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `json:"longitude" form:"longitude" validate:"gte=-180,lte=180"`
	Visibility int     `json:"visibility" form:"visibility" validate:"oneof=0 1"`
}

// Validate 字段校验
func (in *PostingInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.PlaceName = strings.TrimSpace(in.PlaceName)
	in.Address = strings.TrimSpace(in.Address)
	return validate.Struct(response.ErrPostingInvalid, in)
}

func (in *PostingInput) recordDate() time.Time {
	// Validate 已保证格式正确
	d, _ := time.Parse(baseModel.DateLayout, in.RecordDate)
	return d
}

func (in *PostingInput) place() PlaceCandidate {
	return PlaceCandidate{
		Name:      in.PlaceName,
		Address:   in.Address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
}

// ErrImageStoreUnavailable 未配置对象存储时上传图片
var ErrImageStoreUnavailable = errors.New("image storage is not configured")

// AccountGuard 写操作前确认调用者未注销且不在封禁期
type AccountGuard interface {
	RequireActive(ctx context.Context, userID uint) error
}

// activeCaller 已登录且账号可用
func activeCaller(ctx context.Context, accounts AccountGuard, caller identity.Caller) error {
	if err := caller.Require(); err != nil {
		return err
	}
	return accounts.RequireActive(ctx, caller.UserID)
}

type PostingService interface {
	Upload(ctx context.Context, caller identity.Caller, input PostingInput, image *multipart.FileHeader) (*model.Posting, error)
	GetEditInfo(ctx context.Context, caller identity.Caller, postingID uint) (*model.EditInfo, error)
	Edit(ctx context.Context, caller identity.Caller, postingID uint, input PostingInput, image *multipart.FileHeader) (*model.Posting, error)
	Remove(ctx context.Context, caller identity.Caller, postingID uint) error
}

type postingService struct {
	postings  repository.PostingRepository
	comments  repository.CommentRepository
	placeRepo repository.PlaceRepository
	places    PlaceService
	images    uploader.ImageStore
	accounts  AccountGuard
	tx        database.Transactor
	log       *zap.Logger
}

func NewPostingService(
	postings repository.PostingRepository,
	comments repository.CommentRepository,
	placeRepo repository.PlaceRepository,
	places PlaceService,
	images uploader.ImageStore,
	accounts AccountGuard,
	tx database.Transactor,
	log *zap.Logger,
) PostingService {
	return &postingService{
		postings:  postings,
		comments:  comments,
		placeRepo: placeRepo,
		places:    places,
		images:    images,
		accounts:  accounts,
		tx:        tx,
		log:       log,
	}
}

func (s *postingService) Upload(ctx context.Context, caller identity.Caller, input PostingInput, image *multipart.FileHeader) (*model.Posting, error) {
	if err := activeCaller(ctx, s.accounts, caller); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}

	posting := &model.Posting{
		Title:      input.Title,
		Content:    input.Content,
		RecordDate: input.recordDate(),
		ImageURL:   imageURL,
		Visibility: input.Visibility,
		Status:     baseModel.StatusNormal,
		UserID:     caller.UserID,
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		place, err := s.places.ResolvePlace(ctx, input.place())
		if err != nil {
			return err
		}
		posting.PlaceID = place.ID
		return s.postings.Create(ctx, posting)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("posting uploaded", zap.Uint("posting_id", posting.ID), zap.Uint("user_id", caller.UserID))
	return posting, nil
}

func (s *postingService) GetEditInfo(ctx context.Context, caller identity.Caller, postingID uint) (*model.EditInfo, error) {
	posting, err := s.ownedPosting(ctx, caller, postingID)
	if err != nil {
		return nil, err
	}

	place, err := s.placeRepo.GetByID(ctx, posting.PlaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Integrity(response.ErrPostingIntegrity, "place of posting is missing", err)
		}
		return nil, err
	}

	return &model.EditInfo{
		PostingID:  posting.ID,
		Title:      posting.Title,
		Content:    posting.Content,
		RecordDate: baseModel.DateKey(posting.RecordDate),
		ImageURL:   posting.ImageURL,
		Visibility: posting.Visibility,
		Place:      *place,
	}, nil
}

// Edit 可修改标题、内容、日期、地点、可见性和图片，ID 与作者不变
func (s *postingService) Edit(ctx context.Context, caller identity.Caller, postingID uint, input PostingInput, image *multipart.FileHeader) (*model.Posting, error) {
	if err := activeCaller(ctx, s.accounts, caller); err != nil {
		return nil, err
	}
	posting, err := s.ownedPosting(ctx, caller, postingID)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if image != nil {
		imageURL, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		posting.ImageURL = imageURL
	}

	posting.Title = input.Title
	posting.Content = input.Content
	posting.RecordDate = input.recordDate()
	posting.Visibility = input.Visibility

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		place, err := s.places.ResolvePlace(ctx, input.place())
		if err != nil {
			return err
		}
		posting.PlaceID = place.ID
		return s.postings.Update(ctx, posting)
	})
	if err != nil {
		return nil, err
	}
	return posting, nil
}

// Remove 软删除足迹并让其评论失效
func (s *postingService) Remove(ctx context.Context, caller identity.Caller, postingID uint) error {
	if _, err := s.ownedPosting(ctx, caller, postingID); err != nil {
		return err
	}

	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.postings.Remove(ctx, postingID); err != nil {
			return err
		}
		n, err := s.comments.DeactivateByPosting(ctx, postingID)
		if err != nil {
			return err
		}
		s.log.Info("posting removed",
			zap.Uint("posting_id", postingID),
			zap.Int64("comments_deactivated", n))
		return nil
	})
}

// ownedPosting 读取调用者自己的正常足迹
func (s *postingService) ownedPosting(ctx context.Context, caller identity.Caller, postingID uint) (*model.Posting, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	posting, err := s.postings.GetByID(ctx, postingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(response.ErrPostingNotFound, "posting not found")
		}
		return nil, err
	}
	if !posting.Status.IsNormal() {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "posting not found")
	}
	if !posting.OwnedBy(caller.UserID) {
		return nil, apperr.Forbidden(response.ErrNotPostingOwner, "only the owner can modify this posting")
	}
	return posting, nil
}

func (s *postingService) storeImage(ctx context.Context, image *multipart.FileHeader) (*string, error) {
	if image == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, ErrImageStoreUnavailable
	}
	url, err := s.images.Upload(ctx, image)
	if err != nil {
		return nil, err
	}
	return &url, nil
}
