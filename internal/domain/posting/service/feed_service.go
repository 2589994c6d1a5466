package service

import (
	"context"
	"errors"
	"time"

	"footstep/internal/domain/posting/model"
	"footstep/internal/domain/posting/repository"
	"footstep/internal/pkg/identity"
	"footstep/pkg/apperr"
	baseModel "footstep/pkg/model"
	"footstep/pkg/response"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// BlacklistSource 查看者的举报黑名单
type BlacklistSource interface {
	BlacklistFor(ctx context.Context, userID uint) (*baseModel.Blacklist, error)
}

// UserDirectory 查询用户是否存在及昵称
type UserDirectory interface {
	ExistsByID(ctx context.Context, id uint) (bool, error)
	NicknamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error)
}

// FeedService 各类列表与详情，统一应用可见性过滤和聚合统计
type FeedService interface {
	OwnGallery(ctx context.Context, caller identity.Caller) (*model.Gallery, error)
	GlobalFeed(ctx context.Context, caller identity.Caller) ([]model.FeedItem, error)
	UserFeed(ctx context.Context, caller identity.Caller, targetUserID uint) ([]model.FeedItem, error)
	GalleryOnDate(ctx context.Context, caller identity.Caller, date time.Time) (*model.Gallery, error)
	PostingDetail(ctx context.Context, caller identity.Caller, postingID uint) (*model.Detail, error)
	PostingsInDateRange(ctx context.Context, caller identity.Caller, start, end time.Time) ([]model.PlaceMarker, error)
}

type feedService struct {
	postings  repository.PostingRepository
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	places    repository.PlaceRepository
	users     UserDirectory
	blacklist BlacklistSource
}

func NewFeedService(
	postings repository.PostingRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	places repository.PlaceRepository,
	users UserDirectory,
	blacklist BlacklistSource,
) FeedService {
	return &feedService{
		postings:  postings,
		comments:  comments,
		likes:     likes,
		places:    places,
		users:     users,
		blacklist: blacklist,
	}
}

// OwnGallery 自己的全部正常足迹（含私密），不做黑名单过滤；为空时 NotFound
func (s *feedService) OwnGallery(ctx context.Context, caller identity.Caller) (*model.Gallery, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	postings, err := s.postings.FindByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "no postings yet")
	}
	return s.gallery(ctx, caller, postings)
}

// GlobalFeed 其他用户的公开可见足迹；为空不是错误
func (s *feedService) GlobalFeed(ctx context.Context, caller identity.Caller) ([]model.FeedItem, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	bl, err := s.blacklist.BlacklistFor(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	postings, err := s.postings.FindFeed(ctx, caller.UserID, bl)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, caller, postings)
}

// UserFeed 指定用户的公开可见足迹；用户不存在或没有可见内容时 NotFound
func (s *feedService) UserFeed(ctx context.Context, caller identity.Caller, targetUserID uint) ([]model.FeedItem, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound(response.ErrUserNotFound, "user not found")
	}

	bl, err := s.blacklist.BlacklistFor(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	postings, err := s.postings.FindPublicByUser(ctx, targetUserID, bl)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "no visible postings")
	}
	return s.annotate(ctx, caller, postings)
}

// GalleryOnDate 自己某一天的足迹；为空时 NotFound
func (s *feedService) GalleryOnDate(ctx context.Context, caller identity.Caller, date time.Time) (*model.Gallery, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	postings, err := s.postings.FindByOwnerOnDate(ctx, caller.UserID, date)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "no postings on this date")
	}
	return s.gallery(ctx, caller, postings)
}

// PostingDetail 单条足迹及其可见评论
func (s *feedService) PostingDetail(ctx context.Context, caller identity.Caller, postingID uint) (*model.Detail, error) {
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

	bl, err := s.blacklist.BlacklistFor(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !posting.VisibleTo(caller.UserID, bl) {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "posting not found")
	}

	place, err := s.places.GetByID(ctx, posting.PlaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Integrity(response.ErrPostingIntegrity, "place of posting is missing", err)
		}
		return nil, err
	}

	items, err := s.annotate(ctx, caller, []model.Posting{*posting})
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindVisibleByPosting(ctx, posting.ID, bl)
	if err != nil {
		return nil, err
	}
	nicknames, err := s.users.NicknamesByIDs(ctx, lo.Uniq(lo.Map(comments, func(c model.Comment, _ int) uint {
		return c.UserID
	})))
	if err != nil {
		return nil, err
	}

	return &model.Detail{
		FeedItem: items[0],
		Place:    *place,
		Comments: lo.Map(comments, func(c model.Comment, _ int) model.CommentView {
			return model.CommentView{
				CommentID: c.ID,
				Content:   c.Content,
				UserID:    c.UserID,
				Nickname:  nicknames[c.UserID],
				CreatedAt: c.CreatedAt,
			}
		}),
	}, nil
}

// PostingsInDateRange 自己在日期闭区间内去过的地点，按 (地点, 经纬度) 去重
func (s *feedService) PostingsInDateRange(ctx context.Context, caller identity.Caller, start, end time.Time) ([]model.PlaceMarker, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if baseModel.TruncateDay(start).After(baseModel.TruncateDay(end)) {
		return nil, apperr.Validation(response.ErrInvalidDateRange, "start date is after end date")
	}

	postings, err := s.postings.FindByOwnerInRange(ctx, caller.UserID, start, end)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return nil, apperr.NotFound(response.ErrPostingNotFound, "no postings in this range")
	}

	placeIDs := lo.Uniq(lo.Map(postings, func(p model.Posting, _ int) uint { return p.PlaceID }))
	places, err := s.places.FindByIDs(ctx, placeIDs)
	if err != nil {
		return nil, err
	}

	markers := make([]model.PlaceMarker, 0, len(placeIDs))
	for _, p := range postings {
		place, ok := places[p.PlaceID]
		if !ok {
			return nil, apperr.Integrity(response.ErrPostingIntegrity, "place of posting is missing", nil)
		}
		markers = append(markers, model.PlaceMarker{
			PlaceID:   place.ID,
			PlaceName: place.Name,
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		})
	}
	return lo.Uniq(markers), nil
}

// gallery 自己的列表附带日期频次和不同日期数
func (s *feedService) gallery(ctx context.Context, caller identity.Caller, postings []model.Posting) (*model.Gallery, error) {
	items, err := s.annotate(ctx, caller, postings)
	if err != nil {
		return nil, err
	}
	return &model.Gallery{
		Items:             items,
		DistinctDateCount: len(lo.CountValuesBy(items, func(it model.FeedItem) string { return it.RecordDate })),
	}, nil
}

// annotate 统一计算点赞数、是否点赞、评论数、当前列表内同日期的足迹数
func (s *feedService) annotate(ctx context.Context, caller identity.Caller, postings []model.Posting) ([]model.FeedItem, error) {
	if len(postings) == 0 {
		return []model.FeedItem{}, nil
	}

	ids := lo.Map(postings, func(p model.Posting, _ int) uint { return p.ID })

	likeStats, err := s.likes.StatsFor(ctx, ids, caller.UserID)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.comments.CountNormalByPostings(ctx, ids)
	if err != nil {
		return nil, err
	}
	places, err := s.places.FindByIDs(ctx, lo.Uniq(lo.Map(postings, func(p model.Posting, _ int) uint { return p.PlaceID })))
	if err != nil {
		return nil, err
	}
	nicknames, err := s.users.NicknamesByIDs(ctx, lo.Uniq(lo.Map(postings, func(p model.Posting, _ int) uint { return p.UserID })))
	if err != nil {
		return nil, err
	}

	perDate := lo.CountValuesBy(postings, func(p model.Posting) string { return baseModel.DateKey(p.RecordDate) })

	return lo.Map(postings, func(p model.Posting, _ int) model.FeedItem {
		stat := likeStats[p.ID]
		date := baseModel.DateKey(p.RecordDate)
		return model.FeedItem{
			PostingID:    p.ID,
			Title:        p.Title,
			Content:      p.Content,
			RecordDate:   date,
			ImageURL:     p.ImageURL,
			Visibility:   p.Visibility,
			UserID:       p.UserID,
			Nickname:     nicknames[p.UserID],
			PlaceID:      p.PlaceID,
			PlaceName:    places[p.PlaceID].Name,
			LikeCount:    stat.Count,
			IsLiked:      stat.Liked,
			CommentCount: commentCounts[p.ID],
			PostingCount: perDate[date],
			CreatedAt:    p.CreatedAt,
		}
	}), nil
}
