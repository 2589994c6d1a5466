package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"footstep/internal/domain/user/model"
	"footstep/internal/domain/user/repository"
	"footstep/internal/pkg/identity"
	"footstep/internal/pkg/notify"
	"footstep/internal/pkg/session"
	"footstep/internal/pkg/uploader"
	"footstep/pkg/apperr"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"
	"footstep/pkg/response"
	"footstep/pkg/utils"
	"footstep/pkg/validate"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// JoinInput 注册输入
type JoinInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Nickname string `json:"nickname" validate:"notblank,max=20"`
	Password string `json:"password" validate:"min=8,max=64"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChange 修改密码输入
type PasswordChange struct {
	Current string `json:"currentPassword" validate:"required"`
	Next    string `json:"newPassword" validate:"min=8,max=64"`
}

// MyPage 个人主页
type MyPage struct {
	UserID          uint    `json:"userId"`
	Email           string  `json:"email"`
	Nickname        string  `json:"nickname"`
	ProfileImageURL *string `json:"profileImageUrl"`
	PostingCount    int64   `json:"postingCount"`
}

// PostingStats 足迹统计
type PostingStats interface {
	CountNormalByUser(ctx context.Context, userID uint) (int64, error)
}

// Withdrawer 注销级联，由举报审核模块实现
type Withdrawer interface {
	Withdraw(ctx context.Context, userID uint) error
}

// generatedPasswordLength 找回密码时生成的临时密码长度
const generatedPasswordLength = 12

// UserService 用户服务接口
type UserService interface {
	Join(ctx context.Context, input JoinInput) (*model.User, error)
	Login(ctx context.Context, input LoginInput) (*utils.TokenPair, error)
	Reissue(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	Logout(ctx context.Context, caller identity.Caller, refreshToken string) error
	MyPage(ctx context.Context, caller identity.Caller) (*MyPage, error)
	ChangeNickname(ctx context.Context, caller identity.Caller, nickname string) error
	ChangePassword(ctx context.Context, caller identity.Caller, input PasswordChange) error
	ChangeProfileImage(ctx context.Context, caller identity.Caller, image *multipart.FileHeader) (string, error)
	FindPassword(ctx context.Context, email, nickname string) error
	Secession(ctx context.Context, caller identity.Caller) error
}

// userService 实现
type userService struct {
	repo       repository.UserRepository
	postings   PostingStats
	withdrawer Withdrawer
	sessions   session.Store
	tokens     *utils.TokenIssuer
	images     uploader.ImageStore
	notices    notify.Dispatcher
	log        *zap.Logger
	now        func() time.Time
}

// Deps 用户服务依赖
type Deps struct {
	Repo       repository.UserRepository
	Postings   PostingStats
	Withdrawer Withdrawer
	Sessions   session.Store
	Tokens     *utils.TokenIssuer
	Images     uploader.ImageStore
	Notices    notify.Dispatcher
	Log        *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(d Deps) UserService {
	return &userService{
		repo:       d.Repo,
		postings:   d.Postings,
		withdrawer: d.Withdrawer,
		sessions:   d.Sessions,
		tokens:     d.Tokens,
		images:     d.Images,
		notices:    d.Notices,
		log:        d.Log,
		now:        time.Now,
	}
}

// Join 注册，邮箱或昵称重复时返回 Conflict
func (s *userService) Join(ctx context.Context, input JoinInput) (*model.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Nickname = strings.TrimSpace(input.Nickname)
	if err := validate.Struct(response.ErrUserInvalidInput, input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict(response.ErrUserExists, "email already registered")
	}
	if err := s.ensureNicknameFree(ctx, input.Nickname); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    input.Email,
		Nickname: input.Nickname,
		Password: string(hash),
		Status:   baseModel.StatusNormal,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(response.ErrUserExists, "email or nickname already taken")
		}
		return nil, err
	}
	return user, nil
}

// Login 登录，过期的封禁在这里清除
func (s *userService) Login(ctx context.Context, input LoginInput) (*utils.TokenPair, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(response.ErrUserInvalidInput, input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(response.ErrUserNotFound, "user not found")
		}
		return nil, err
	}
	if user.IsWithdrawn() {
		return nil, apperr.Forbidden(response.ErrUserWithdrawn, "account has been withdrawn")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return nil, apperr.Unauthorized(response.ErrAuthFailed, "wrong email or password")
	}

	if err := s.checkBan(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Reissue 用刷新令牌换新的令牌对，旧刷新令牌作废
func (s *userService) Reissue(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, utils.RefreshToken)
	if err != nil {
		return nil, apperr.Unauthorized(response.ErrTokenInvalid, "invalid refresh token")
	}

	valid, err := s.sessions.Valid(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperr.Unauthorized(response.ErrTokenMismatch, "refresh token is no longer valid")
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBan(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sessions.Revoke(ctx, claims.UserID, claims.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout 撤销当前刷新令牌
func (s *userService) Logout(ctx context.Context, caller identity.Caller, refreshToken string) error {
	if err := caller.Require(); err != nil {
		return err
	}

	claims, err := s.tokens.Parse(refreshToken, utils.RefreshToken)
	if err != nil {
		return apperr.Unauthorized(response.ErrTokenInvalid, "invalid refresh token")
	}
	if claims.UserID != caller.UserID {
		return apperr.Unauthorized(response.ErrTokenMismatch, "refresh token belongs to another user")
	}
	return s.sessions.Revoke(ctx, claims.UserID, claims.ID)
}

func (s *userService) MyPage(ctx context.Context, caller identity.Caller) (*MyPage, error) {
	user, err := s.callerUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	count, err := s.postings.CountNormalByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &MyPage{
		UserID:          user.ID,
		Email:           user.Email,
		Nickname:        user.Nickname,
		ProfileImageURL: user.ProfileImageURL,
		PostingCount:    count,
	}, nil
}

func (s *userService) ChangeNickname(ctx context.Context, caller identity.Caller, nickname string) error {
	user, err := s.callerUser(ctx, caller)
	if err != nil {
		return err
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" || len([]rune(nickname)) > 20 {
		return apperr.Validation(response.ErrUserInvalidInput, "nickname must be 1-20 characters")
	}
	if nickname == user.Nickname {
		return nil
	}
	if err := s.ensureNicknameFree(ctx, nickname); err != nil {
		return err
	}

	if err := s.repo.UpdateNickname(ctx, user.ID, nickname); err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(response.ErrNicknameExists, "nickname already taken")
		}
		return err
	}
	return nil
}

// ChangePassword 当前密码错误返回 Unauthorized，新旧相同返回 Conflict
func (s *userService) ChangePassword(ctx context.Context, caller identity.Caller, input PasswordChange) error {
	user, err := s.callerUser(ctx, caller)
	if err != nil {
		return err
	}
	if err := validate.Struct(response.ErrUserInvalidInput, input); err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Current)) != nil {
		return apperr.Unauthorized(response.ErrAuthFailed, "current password is wrong")
	}
	if input.Current == input.Next {
		return apperr.Conflict(response.ErrSamePassword, "new password equals the current one")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *userService) ChangeProfileImage(ctx context.Context, caller identity.Caller, image *multipart.FileHeader) (string, error) {
	user, err := s.callerUser(ctx, caller)
	if err != nil {
		return "", err
	}
	if image == nil {
		return "", apperr.Validation(response.ErrUserInvalidInput, "image is required")
	}
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}

	url, err := s.images.Upload(ctx, image)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateProfileImage(ctx, user.ID, &url); err != nil {
		return "", err
	}
	return url, nil
}

// FindPassword 邮箱和昵称匹配时重置为随机密码并邮件通知
func (s *userService) FindPassword(ctx context.Context, email, nickname string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(response.ErrUserNotFound, "user not found")
		}
		return err
	}
	if user.IsWithdrawn() {
		return apperr.NotFound(response.ErrUserNotFound, "user not found")
	}
	if user.Nickname != strings.TrimSpace(nickname) {
		return apperr.Validation(response.ErrNicknameMismatch, "nickname does not match")
	}

	password := lo.RandomString(generatedPasswordLength, lo.AlphanumericCharset)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.notices.Dispatch(notify.Notice{
		Email: user.Email,
		Kind:  notify.KindPasswordReset,
		Params: map[string]string{
			notify.ParamNickname: user.Nickname,
			notify.ParamPassword: password,
		},
	})
	return nil
}

// Secession 注销账号，级联方式与封禁相同，不可恢复
func (s *userService) Secession(ctx context.Context, caller identity.Caller) error {
	if _, err := s.callerUser(ctx, caller); err != nil {
		return err
	}
	return s.withdrawer.Withdraw(ctx, caller.UserID)
}

func (s *userService) ensureNicknameFree(ctx context.Context, nickname string) error {
	exists, err := s.repo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict(response.ErrNicknameExists, "nickname already taken")
	}
	return nil
}

// checkBan 封禁期内拒绝，过期封禁顺手清除
func (s *userService) checkBan(ctx context.Context, user *model.User) error {
	now := s.now()
	if user.SuspendedAt(now) {
		return apperr.Forbidden(response.ErrUserSuspended, "account is suspended until "+user.BannedUntil.UTC().Format(time.RFC3339))
	}
	if user.BanExpiredAt(now) {
		if err := s.repo.ClearBan(ctx, user.ID); err != nil {
			return err
		}
		user.BannedUntil = nil
		s.log.Info("expired ban cleared", zap.Uint("user_id", user.ID))
	}
	return nil
}

func (s *userService) issue(ctx context.Context, user *model.User) (*utils.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user.ID, pair.RefreshTokenID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *userService) callerUser(ctx context.Context, caller identity.Caller) (*model.User, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	return s.activeUser(ctx, caller.UserID)
}

// activeUser 读取未注销的用户
func (s *userService) activeUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(response.ErrUserNotFound, "user not found")
		}
		return nil, err
	}
	if user.IsWithdrawn() {
		return nil, apperr.Forbidden(response.ErrUserWithdrawn, "account has been withdrawn")
	}
	return user, nil
}
