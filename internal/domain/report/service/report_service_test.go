package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	moderation "footstep/internal/domain/moderation/service"
	postingModel "footstep/internal/domain/posting/model"
	postingService "footstep/internal/domain/posting/service"
	userModel "footstep/internal/domain/user/model"
	userService "footstep/internal/domain/user/service"
	"footstep/internal/pkg/identity"
	"footstep/internal/pkg/testkit"
	"footstep/pkg/apperr"
	"footstep/pkg/cache"
	"footstep/pkg/metrics"
	baseModel "footstep/pkg/model"
	"footstep/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const password = "password1"

// world 把举报、审核、列表和用户服务接到同一个内存数据集上
type world struct {
	store    *testkit.Store
	cache    *cache.MemoryCache
	metrics  *metrics.Collector
	reports  ReportService
	feed     postingService.FeedService
	postings postingService.PostingService
	likes    postingService.LikeService
	comments postingService.CommentService
	users    userService.UserService
	clock    time.Time
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		store:   testkit.NewStore(),
		cache:   cache.NewMemoryCache(),
		metrics: metrics.NewCollector(prometheus.NewRegistry()),
		clock:   time.Now().UTC(),
	}
	now := func() time.Time { return w.clock }
	w.store.Now = now
	sessions := testkit.NewSessions()
	log := zap.NewNop()
	accounts := userService.NewAccountGuard(w.store.Users(), now)

	policy := moderation.NewPolicy(moderation.Config{ReportThreshold: 3, BanDuration: 30 * 24 * time.Hour}, moderation.Deps{
		Users:    w.store.Users(),
		Reports:  w.store.Reports(),
		Postings: w.store.Postings(),
		Comments: w.store.Comments(),
		Likes:    w.store.Likes(),
		Tx:       testkit.Tx{},
		Sessions: sessions,
		Notices:  &testkit.Notices{},
		Metrics:  w.metrics,
		Log:      log,
		Now:      now,
	})
	w.reports = NewReportService(Deps{
		Accounts: accounts,
		Reports:  w.store.Reports(),
		Postings: w.store.Postings(),
		Comments: w.store.Comments(),
		Policy:   policy,
		Tx:       testkit.Tx{},
		Cache:    w.cache,
		Metrics:  w.metrics,
		Log:      log,
	})
	w.feed = postingService.NewFeedService(w.store.Postings(), w.store.Comments(), w.store.Likes(), w.store.Places(), w.store.Users(), w.reports)
	places := postingService.NewPlaceService(w.store.Places(), testkit.Tx{})
	w.postings = postingService.NewPostingService(w.store.Postings(), w.store.Comments(), w.store.Places(), places, nil, accounts, testkit.Tx{}, log)
	w.likes = postingService.NewLikeService(w.store.Postings(), w.store.Likes(), w.reports, accounts, testkit.Tx{})
	w.comments = postingService.NewCommentService(w.store.Postings(), w.store.Comments(), w.reports, accounts)
	w.users = userService.NewUserService(userService.Deps{
		Repo:       w.store.Users(),
		Postings:   w.store.Postings(),
		Withdrawer: policy,
		Sessions:   sessions,
		Tokens:     utils.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour),
		Notices:    &testkit.Notices{},
		Log:        log,
	})
	return w
}

func (w *world) user(t *testing.T, nickname string) identity.Caller {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &userModel.User{Email: nickname + "@example.com", Nickname: nickname, Password: string(hash), Status: baseModel.StatusNormal}
	require.NoError(t, w.store.Users().Create(context.Background(), u))
	return identity.Caller{UserID: u.ID, Email: u.Email}
}

func (w *world) posting(t *testing.T, owner identity.Caller, title string) uint {
	t.Helper()
	ctx := context.Background()
	place := &postingModel.Place{Name: "park", Address: "road", Latitude: float64(len(title)), Longitude: 1}
	if existing, err := w.store.Places().GetByCoordinates(ctx, place.Latitude, place.Longitude); err == nil {
		place = existing
	} else {
		require.NoError(t, w.store.Places().Create(ctx, place))
	}
	p := &postingModel.Posting{
		Title:      title,
		Content:    "content",
		RecordDate: baseModel.TruncateDay(w.clock),
		Visibility: postingModel.VisibilityPublic,
		Status:     baseModel.StatusNormal,
		UserID:     owner.UserID,
		PlaceID:    place.ID,
	}
	require.NoError(t, w.store.Postings().Create(ctx, p))
	return p.ID
}

func (w *world) reportPosting(t *testing.T, reporter identity.Caller, postingID uint) {
	t.Helper()
	_, err := w.reports.FileReport(context.Background(), reporter, ReportInput{
		TargetKind: baseModel.TargetPosting,
		TargetID:   postingID,
		Reason:     "spam",
	})
	require.NoError(t, err)
}

func feedIDs(items []postingModel.FeedItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PostingID)
	}
	return ids
}

func TestFileReport_HidesPostingFromReporterOnly(t *testing.T) {
	w := newWorld(t)
	author, reporter, bystander := w.user(t, "author"), w.user(t, "reporter"), w.user(t, "bystander")
	p := w.posting(t, author, "sunset")
	ctx := context.Background()

	// 先读一次，让黑名单进入缓存
	items, err := w.feed.GlobalFeed(ctx, reporter)
	require.NoError(t, err)
	assert.Equal(t, []uint{p}, feedIDs(items))

	w.reportPosting(t, reporter, p)

	items, err = w.feed.GlobalFeed(ctx, reporter)
	require.NoError(t, err)
	assert.Empty(t, items, "cached blacklist is invalidated by the new report")

	_, err = w.feed.PostingDetail(ctx, reporter, p)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	items, err = w.feed.GlobalFeed(ctx, bystander)
	require.NoError(t, err)
	assert.Equal(t, []uint{p}, feedIDs(items))

	// 作者自己仍能看到
	gallery, err := w.feed.OwnGallery(ctx, author)
	require.NoError(t, err)
	assert.Len(t, gallery.Items, 1)
}

func TestFileReport_RepeatedReportsByOneUser(t *testing.T) {
	w := newWorld(t)
	author, reporter := w.user(t, "author"), w.user(t, "reporter")
	p := w.posting(t, author, "sunset")

	w.reportPosting(t, reporter, p)
	w.reportPosting(t, reporter, p)

	assert.Equal(t, 2, w.store.ReportCount())
	bl, err := w.reports.BlacklistFor(context.Background(), reporter.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, bl.Len(), "blacklist keeps one entry per target")
	assert.Nil(t, w.store.User(author.UserID).BannedUntil)

	// 每条举报都计入阈值
	w.reportPosting(t, reporter, p)
	assert.Equal(t, 3, w.store.ReportCount())
	assert.NotNil(t, w.store.User(author.UserID).BannedUntil)
}

func TestFileReport_TwoReportsKeepAuthorVisible(t *testing.T) {
	w := newWorld(t)
	author, bystander := w.user(t, "author"), w.user(t, "bystander")
	p := w.posting(t, author, "sunset")

	w.reportPosting(t, w.user(t, "r1"), p)
	w.reportPosting(t, w.user(t, "r2"), p)

	items, err := w.feed.GlobalFeed(context.Background(), bystander)
	require.NoError(t, err)
	assert.Equal(t, []uint{p}, feedIDs(items))
	assert.Nil(t, w.store.User(author.UserID).BannedUntil)
}

func TestFileReport_ThirdReportSuspendsAuthor(t *testing.T) {
	w := newWorld(t)
	author, bystander := w.user(t, "author"), w.user(t, "bystander")
	first := w.posting(t, author, "sunset")
	w.posting(t, author, "sunrise")
	ctx := context.Background()

	// 三个举报人分别举报作者的内容
	w.reportPosting(t, w.user(t, "r1"), first)
	w.reportPosting(t, w.user(t, "r2"), first)
	w.reportPosting(t, w.user(t, "r3"), first)

	banned := w.store.User(author.UserID).BannedUntil
	require.NotNil(t, banned)
	assert.WithinDuration(t, w.clock.Add(30*24*time.Hour), *banned, time.Second)

	items, err := w.feed.GlobalFeed(ctx, bystander)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = w.feed.UserFeed(ctx, bystander, author.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = w.users.Login(ctx, userService.LoginInput{Email: "author@example.com", Password: password})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	rec := httptest.NewRecorder()
	w.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "footstep_suspensions_total 1")
}

func TestFileReport_SuspendedAuthorCannotWrite(t *testing.T) {
	w := newWorld(t)
	author, bystander := w.user(t, "author"), w.user(t, "bystander")
	p := w.posting(t, author, "sunset")
	other := w.posting(t, bystander, "sunrise")
	ctx := context.Background()

	// 作者登录后拿到的令牌在封禁后依然有效
	_, err := w.users.Login(ctx, userService.LoginInput{Email: "author@example.com", Password: password})
	require.NoError(t, err)

	w.reportPosting(t, w.user(t, "r1"), p)
	w.reportPosting(t, w.user(t, "r2"), p)
	w.reportPosting(t, w.user(t, "r3"), p)
	require.NotNil(t, w.store.User(author.UserID).BannedUntil)

	_, err = w.postings.Upload(ctx, author, postingService.PostingInput{
		Title:      "after ban",
		Content:    "content",
		RecordDate: w.clock.Format("2006-01-02"),
		PlaceName:  "park",
		Address:    "road",
		Latitude:   37.5,
		Longitude:  127,
		Visibility: postingModel.VisibilityPublic,
	}, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = w.comments.AddComment(ctx, author, other, postingService.CommentInput{Content: "hello"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = w.likes.ToggleLike(ctx, author, other)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = w.reports.FileReport(ctx, author, ReportInput{TargetKind: baseModel.TargetPosting, TargetID: other, Reason: "revenge"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	items, err := w.feed.GlobalFeed(ctx, bystander)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, w.store.LikeCount())

	// 封禁到期后恢复写权限
	w.clock = w.clock.Add(31 * 24 * time.Hour)
	_, err = w.likes.ToggleLike(ctx, author, other)
	assert.NoError(t, err)
}

func TestFileReport_WithdrawnReporterRejected(t *testing.T) {
	w := newWorld(t)
	author, reporter := w.user(t, "author"), w.user(t, "reporter")
	p := w.posting(t, author, "sunset")
	ctx := context.Background()

	_, err := w.store.Users().Withdraw(ctx, reporter.UserID)
	require.NoError(t, err)

	_, err = w.reports.FileReport(ctx, reporter, ReportInput{TargetKind: baseModel.TargetPosting, TargetID: p, Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Zero(t, w.store.ReportCount())
}

func TestFileReport_CommentReportHidesAuthorComments(t *testing.T) {
	w := newWorld(t)
	owner, troll, reporter := w.user(t, "owner"), w.user(t, "troll"), w.user(t, "reporter")
	p := w.posting(t, owner, "sunset")
	ctx := context.Background()

	first, err := w.comments.AddComment(ctx, troll, p, postingService.CommentInput{Content: "first"})
	require.NoError(t, err)
	_, err = w.comments.AddComment(ctx, troll, p, postingService.CommentInput{Content: "second"})
	require.NoError(t, err)
	_, err = w.comments.AddComment(ctx, owner, p, postingService.CommentInput{Content: "thanks"})
	require.NoError(t, err)

	report, err := w.reports.FileReport(ctx, reporter, ReportInput{TargetKind: baseModel.TargetComment, TargetID: first.ID, Reason: "rude"})
	require.NoError(t, err)
	assert.Equal(t, troll.UserID, report.TargetOwnerID)
	assert.Empty(t, report.Title)

	detail, err := w.feed.PostingDetail(ctx, reporter, p)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, owner.UserID, detail.Comments[0].UserID)

	detail, err = w.feed.PostingDetail(ctx, owner, p)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 3)
}

func TestFileReport_Validation(t *testing.T) {
	w := newWorld(t)
	reporter := w.user(t, "reporter")
	ctx := context.Background()

	_, err := w.reports.FileReport(ctx, reporter, ReportInput{TargetKind: baseModel.TargetPosting, TargetID: 404, Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = w.reports.FileReport(ctx, reporter, ReportInput{TargetKind: "USER", TargetID: 1, Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = w.reports.FileReport(ctx, reporter, ReportInput{TargetKind: baseModel.TargetPosting, TargetID: 1, Reason: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = w.reports.FileReport(ctx, identity.Anonymous, ReportInput{TargetKind: baseModel.TargetPosting, TargetID: 1, Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestFileReport_TitleSnapshot(t *testing.T) {
	w := newWorld(t)
	author, reporter := w.user(t, "author"), w.user(t, "reporter")
	p := w.posting(t, author, "sunset")

	report, err := w.reports.FileReport(context.Background(), reporter, ReportInput{TargetKind: baseModel.TargetPosting, TargetID: p, Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, "sunset", report.Title)
	assert.Equal(t, author.UserID, report.TargetOwnerID)
}

func TestFileReport_PartialCascadeIsReported(t *testing.T) {
	w := newWorld(t)
	author := w.user(t, "author")
	p := w.posting(t, author, "sunset")
	w.store.Fail = func(collection string, id uint) error {
		if collection == moderation.CollectionPostings {
			return errors.New("timeout")
		}
		return nil
	}

	w.reportPosting(t, w.user(t, "r1"), p)
	w.reportPosting(t, w.user(t, "r2"), p)
	report, err := w.reports.FileReport(context.Background(), w.user(t, "r3"), ReportInput{TargetKind: baseModel.TargetPosting, TargetID: p, Reason: "spam"})

	require.NotNil(t, report, "the report itself is kept")
	var partial *apperr.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.NotNil(t, w.store.User(author.UserID).BannedUntil)
}

func TestBlacklistFor_UsesCache(t *testing.T) {
	w := newWorld(t)
	author, reporter := w.user(t, "author"), w.user(t, "reporter")
	p := w.posting(t, author, "sunset")
	w.reportPosting(t, reporter, p)
	ctx := context.Background()

	bl, err := w.reports.BlacklistFor(ctx, reporter.UserID)
	require.NoError(t, err)
	assert.True(t, bl.HasPosting(p))

	exists, err := w.cache.Exists(ctx, blacklistKey(reporter.UserID))
	require.NoError(t, err)
	assert.True(t, exists)

	cached, err := w.reports.BlacklistFor(ctx, reporter.UserID)
	require.NoError(t, err)
	assert.Equal(t, bl.PostingIDs(), cached.PostingIDs())

	empty, err := w.reports.BlacklistFor(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}
