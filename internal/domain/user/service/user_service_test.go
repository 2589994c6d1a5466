package service

import (
	"context"
	"testing"
	"time"

	"footstep/internal/domain/user/model"
	"footstep/internal/pkg/identity"
	"footstep/internal/pkg/notify"
	"footstep/pkg/apperr"
	baseModel "footstep/pkg/model"
	"footstep/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	args := m.Called(ctx, nickname)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) NicknamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uint]string), args.Error(1)
}

func (m *MockUserRepository) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	args := m.Called(ctx, id, nickname)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, id uint, url *string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockUserRepository) Suspend(ctx context.Context, id uint, until, at time.Time) (bool, error) {
	args := m.Called(ctx, id, until, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ClearBan(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Withdraw(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockSessionStore is a mock of session.Store
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, userID uint, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, userID, tokenID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Valid(ctx context.Context, userID uint, tokenID string) (bool, error) {
	args := m.Called(ctx, userID, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, userID uint, tokenID string) error {
	args := m.Called(ctx, userID, tokenID)
	return args.Error(0)
}

func (m *MockSessionStore) InvalidateAll(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockWithdrawer struct {
	mock.Mock
}

func (m *MockWithdrawer) Withdraw(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type fixedPostingStats int64

func (f fixedPostingStats) CountNormalByUser(context.Context, uint) (int64, error) {
	return int64(f), nil
}

// recordingDispatcher 记录投递的通知
type recordingDispatcher struct {
	notices []notify.Notice
}

func (r *recordingDispatcher) Dispatch(n notify.Notice) {
	r.notices = append(r.notices, n)
}

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	repo       *MockUserRepository
	sessions   *MockSessionStore
	withdrawer *MockWithdrawer
	notices    *recordingDispatcher
	tokens     *utils.TokenIssuer
	svc        *userService
	now        time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:       new(MockUserRepository),
		sessions:   new(MockSessionStore),
		withdrawer: new(MockWithdrawer),
		notices:    &recordingDispatcher{},
		tokens:     utils.NewTokenIssuer(testSecret, time.Hour, 24*time.Hour),
		now:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewUserService(Deps{
		Repo:       f.repo,
		Postings:   fixedPostingStats(3),
		Withdrawer: f.withdrawer,
		Sessions:   f.sessions,
		Tokens:     f.tokens,
		Notices:    f.notices,
		Log:        zap.NewNop(),
	}).(*userService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func hashed(t *testing.T, password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_Join(t *testing.T) {
	input := JoinInput{Email: "A@Example.com ", Nickname: "walker", Password: "password1"}

	t.Run("creates user with hashed password", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ExistsByEmail", mock.Anything, "a@example.com").Return(false, nil)
		f.repo.On("ExistsByNickname", mock.Anything, "walker").Return(false, nil)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := f.svc.Join(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
		assert.Equal(t, baseModel.StatusNormal, user.Status)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password1")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ExistsByEmail", mock.Anything, "a@example.com").Return(true, nil)

		_, err := f.svc.Join(context.Background(), input)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("duplicate nickname", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ExistsByEmail", mock.Anything, "a@example.com").Return(false, nil)
		f.repo.On("ExistsByNickname", mock.Anything, "walker").Return(true, nil)

		_, err := f.svc.Join(context.Background(), input)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("short password", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Join(context.Background(), JoinInput{Email: "a@example.com", Nickname: "w", Password: "short"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestUserService_Login(t *testing.T) {
	input := LoginInput{Email: "a@example.com", Password: "password1"}

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Login(context.Background(), input)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Password: hashed(t, "other-password"), Status: baseModel.StatusNormal,
		}, nil)

		_, err := f.svc.Login(context.Background(), input)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("withdrawn", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Password: hashed(t, "password1"), Status: baseModel.StatusWithdrawn,
		}, nil)

		_, err := f.svc.Login(context.Background(), input)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("suspended", func(t *testing.T) {
		f := newFixture()
		until := f.now.Add(24 * time.Hour)
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Password: hashed(t, "password1"), Status: baseModel.StatusNormal, BannedUntil: &until,
		}, nil)

		_, err := f.svc.Login(context.Background(), input)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired ban is cleared and tokens issued", func(t *testing.T) {
		f := newFixture()
		until := f.now.Add(-time.Minute)
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Email: "a@example.com", Password: hashed(t, "password1"), Status: baseModel.StatusNormal, BannedUntil: &until,
		}, nil)
		f.repo.On("ClearBan", mock.Anything, uint(1)).Return(nil)
		f.sessions.On("Save", mock.Anything, uint(1), mock.Anything, 24*time.Hour).Return(nil)

		pair, err := f.svc.Login(context.Background(), input)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)

		claims, err := f.tokens.Parse(pair.RefreshToken, utils.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(1), claims.UserID)
		f.repo.AssertCalled(t, "ClearBan", mock.Anything, uint(1))
	})
}

func TestUserService_Reissue(t *testing.T) {
	t.Run("rotates refresh token", func(t *testing.T) {
		f := newFixture()
		old, err := f.tokens.GeneratePair(1, "a@example.com")
		require.NoError(t, err)

		f.sessions.On("Valid", mock.Anything, uint(1), old.RefreshTokenID).Return(true, nil)
		f.repo.On("GetByID", mock.Anything, uint(1)).Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Email: "a@example.com", Status: baseModel.StatusNormal,
		}, nil)
		f.sessions.On("Revoke", mock.Anything, uint(1), old.RefreshTokenID).Return(nil)
		f.sessions.On("Save", mock.Anything, uint(1), mock.Anything, 24*time.Hour).Return(nil)

		pair, err := f.svc.Reissue(context.Background(), old.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, old.RefreshTokenID, pair.RefreshTokenID)
	})

	t.Run("revoked session", func(t *testing.T) {
		f := newFixture()
		old, err := f.tokens.GeneratePair(1, "a@example.com")
		require.NoError(t, err)
		f.sessions.On("Valid", mock.Anything, uint(1), old.RefreshTokenID).Return(false, nil)

		_, err = f.svc.Reissue(context.Background(), old.RefreshToken)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		f := newFixture()
		old, err := f.tokens.GeneratePair(1, "a@example.com")
		require.NoError(t, err)

		_, err = f.svc.Reissue(context.Background(), old.AccessToken)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestUserService_Logout_OtherUsersToken(t *testing.T) {
	f := newFixture()
	pair, err := f.tokens.GeneratePair(2, "b@example.com")
	require.NoError(t, err)

	err = f.svc.Logout(context.Background(), identity.Caller{UserID: 1}, pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUserService_MyPage(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, uint(1)).Return(&model.User{
		BaseModel: baseModel.BaseModel{ID: 1}, Email: "a@example.com", Nickname: "walker", Status: baseModel.StatusNormal,
	}, nil)

	page, err := f.svc.MyPage(context.Background(), identity.Caller{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, "walker", page.Nickname)
	assert.Equal(t, int64(3), page.PostingCount)
}

func TestUserService_ChangePassword(t *testing.T) {
	caller := identity.Caller{UserID: 1}
	user := func(t *testing.T) *model.User {
		return &model.User{BaseModel: baseModel.BaseModel{ID: 1}, Password: hashed(t, "password1"), Status: baseModel.StatusNormal}
	}

	t.Run("wrong current", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, uint(1)).Return(user(t), nil)

		err := f.svc.ChangePassword(context.Background(), caller, PasswordChange{Current: "nope-nope", Next: "password2"})
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("same password", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, uint(1)).Return(user(t), nil)

		err := f.svc.ChangePassword(context.Background(), caller, PasswordChange{Current: "password1", Next: "password1"})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("updates hash", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, uint(1)).Return(user(t), nil)
		f.repo.On("UpdatePassword", mock.Anything, uint(1), mock.AnythingOfType("string")).Return(nil)

		err := f.svc.ChangePassword(context.Background(), caller, PasswordChange{Current: "password1", Next: "password2"})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}

func TestUserService_ChangeNickname(t *testing.T) {
	caller := identity.Caller{UserID: 1}

	t.Run("taken", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, uint(1)).Return(&model.User{BaseModel: baseModel.BaseModel{ID: 1}, Nickname: "old"}, nil)
		f.repo.On("ExistsByNickname", mock.Anything, "new").Return(true, nil)

		err := f.svc.ChangeNickname(context.Background(), caller, "new")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("unchanged is a no-op", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", mock.Anything, uint(1)).Return(&model.User{BaseModel: baseModel.BaseModel{ID: 1}, Nickname: "old"}, nil)

		require.NoError(t, f.svc.ChangeNickname(context.Background(), caller, " old "))
		f.repo.AssertNotCalled(t, "UpdateNickname", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_FindPassword(t *testing.T) {
	t.Run("nickname mismatch", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Nickname: "walker", Status: baseModel.StatusNormal,
		}, nil)

		err := f.svc.FindPassword(context.Background(), "a@example.com", "runner")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Empty(t, f.notices.notices)
	})

	t.Run("mails generated password", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByEmail", mock.Anything, "a@example.com").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: 1}, Email: "a@example.com", Nickname: "walker", Status: baseModel.StatusNormal,
		}, nil)

		var stored string
		f.repo.On("UpdatePassword", mock.Anything, uint(1), mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { stored = args.String(2) }).
			Return(nil)

		require.NoError(t, f.svc.FindPassword(context.Background(), "a@example.com", "walker"))
		require.Len(t, f.notices.notices, 1)

		n := f.notices.notices[0]
		assert.Equal(t, notify.KindPasswordReset, n.Kind)
		password := n.Params[notify.ParamPassword]
		assert.Len(t, password, generatedPasswordLength)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)))
	})
}

func TestUserService_Secession(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, uint(1)).Return(&model.User{BaseModel: baseModel.BaseModel{ID: 1}, Status: baseModel.StatusNormal}, nil)
	f.withdrawer.On("Withdraw", mock.Anything, uint(1)).Return(nil)

	require.NoError(t, f.svc.Secession(context.Background(), identity.Caller{UserID: 1}))
	f.withdrawer.AssertExpectations(t)
}
