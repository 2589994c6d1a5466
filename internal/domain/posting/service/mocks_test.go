package service

import (
	"context"
	"mime/multipart"
	"time"

	"footstep/internal/domain/posting/model"
	baseModel "footstep/pkg/model"

	"github.com/stretchr/testify/mock"
)

// passTx 直接执行 fn，不开启真实事务
type passTx struct{}

func (passTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockPostingRepository is a mock of PostingRepository
type MockPostingRepository struct {
	mock.Mock
}

func (m *MockPostingRepository) Create(ctx context.Context, posting *model.Posting) error {
	args := m.Called(ctx, posting)
	return args.Error(0)
}

func (m *MockPostingRepository) GetByID(ctx context.Context, id uint) (*model.Posting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Posting), args.Error(1)
}

func (m *MockPostingRepository) Update(ctx context.Context, posting *model.Posting) error {
	args := m.Called(ctx, posting)
	return args.Error(0)
}

func (m *MockPostingRepository) Remove(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostingRepository) FindByOwner(ctx context.Context, userID uint) ([]model.Posting, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindByOwnerOnDate(ctx context.Context, userID uint, date time.Time) ([]model.Posting, error) {
	args := m.Called(ctx, userID, date)
	return args.Get(0).([]model.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindByOwnerInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Posting, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]model.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindFeed(ctx context.Context, viewerID uint, bl *baseModel.Blacklist) ([]model.Posting, error) {
	args := m.Called(ctx, viewerID, bl)
	return args.Get(0).([]model.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindPublicByUser(ctx context.Context, userID uint, bl *baseModel.Blacklist) ([]model.Posting, error) {
	args := m.Called(ctx, userID, bl)
	return args.Get(0).([]model.Posting), args.Error(1)
}

func (m *MockPostingRepository) CountNormalByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostingRepository) ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uint), args.Error(1)
}

// MockCommentRepository is a mock of CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) FindVisibleByPosting(ctx context.Context, postingID uint, bl *baseModel.Blacklist) ([]model.Comment, error) {
	args := m.Called(ctx, postingID, bl)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountNormalByPostings(ctx context.Context, postingIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, postingIDs)
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockCommentRepository) Deactivate(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommentRepository) DeactivateByPosting(ctx context.Context, postingID uint) (int64, error) {
	args := m.Called(ctx, postingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) ListNormalIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uint), args.Error(1)
}

// MockLikeRepository is a mock of LikeRepository
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) GetByUserAndPosting(ctx context.Context, userID, postingID uint) (*model.Like, error) {
	args := m.Called(ctx, userID, postingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Like), args.Error(1)
}

func (m *MockLikeRepository) Create(ctx context.Context, like *model.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) SetStatus(ctx context.Context, id uint, status baseModel.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLikeRepository) StatsFor(ctx context.Context, postingIDs []uint, viewerID uint) (map[uint]model.LikeStat, error) {
	args := m.Called(ctx, postingIDs, viewerID)
	return args.Get(0).(map[uint]model.LikeStat), args.Error(1)
}

func (m *MockLikeRepository) CountNormal(ctx context.Context, postingID uint) (int64, error) {
	args := m.Called(ctx, postingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) ListIDsByOwner(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockLikeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPlaceRepository is a mock of PlaceRepository
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) GetByCoordinates(ctx context.Context, lat, lng float64) (*model.Place, error) {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

func (m *MockPlaceRepository) GetByID(ctx context.Context, id uint) (*model.Place, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

func (m *MockPlaceRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Place, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uint]model.Place), args.Error(1)
}

func (m *MockPlaceRepository) Create(ctx context.Context, place *model.Place) error {
	args := m.Called(ctx, place)
	return args.Error(0)
}

// MockUserDirectory is a mock of UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ExistsByID(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDirectory) NicknamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uint]string), args.Error(1)
}

// staticBlacklist 固定返回同一个黑名单
type staticBlacklist struct {
	bl *baseModel.Blacklist
}

func (s staticBlacklist) BlacklistFor(ctx context.Context, userID uint) (*baseModel.Blacklist, error) {
	if s.bl == nil {
		return baseModel.EmptyBlacklist(), nil
	}
	return s.bl, nil
}

// MockImageStore is a mock of ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

// fixedAccounts 账号检查固定返回 err
type fixedAccounts struct {
	err error
}

func (a fixedAccounts) RequireActive(ctx context.Context, userID uint) error {
	return a.err
}
