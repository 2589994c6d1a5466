package repository

import (
	"context"
	"time"

	"footstep/internal/domain/user/model"
	"footstep/pkg/database"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// UserRepository 接口定义
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	// ExistsByID 只统计正常用户
	ExistsByID(ctx context.Context, id uint) (bool, error)
	NicknamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error)
	UpdateNickname(ctx context.Context, id uint, nickname string) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateProfileImage(ctx context.Context, id uint, url *string) error
	// Suspend 仅当用户正常且不在封禁期时生效，返回是否更新
	Suspend(ctx context.Context, id uint, until, at time.Time) (bool, error)
	ClearBan(ctx context.Context, id uint) error
	// Withdraw 仅对正常用户生效，返回是否更新
	Withdraw(ctx context.Context, id uint) (bool, error)
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return database.Conn(ctx, r.db).Create(user).Error
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := database.Conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, "nickname = ?", nickname)
}

func (r *userRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND status = ?", id, baseModel.StatusNormal).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.User{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}

// NicknamesByIDs 批量查询昵称
func (r *userRepository) NicknamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []struct {
		ID       uint
		Nickname string
	}
	err := database.Conn(ctx, r.db).Model(&model.User{}).
		Select("id", "nickname").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Nickname
	}
	return result, nil
}

func (r *userRepository) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	return r.update(ctx, id, map[string]interface{}{"nickname": nickname})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.update(ctx, id, map[string]interface{}{"password": hash})
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, id uint, url *string) error {
	return r.update(ctx, id, map[string]interface{}{"profile_image_url": url})
}

func (r *userRepository) ClearBan(ctx context.Context, id uint) error {
	return r.update(ctx, id, map[string]interface{}{"banned_until": nil})
}

func (r *userRepository) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return database.Conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepository) Suspend(ctx context.Context, id uint, until, at time.Time) (bool, error) {
	result := database.Conn(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND status = ?", id, baseModel.StatusNormal).
		Where("banned_until IS NULL OR banned_until <= ?", at).
		Updates(map[string]interface{}{
			"banned_until":      until,
			"last_suspended_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *userRepository) Withdraw(ctx context.Context, id uint) (bool, error) {
	result := database.Conn(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND status = ?", id, baseModel.StatusNormal).
		Updates(map[string]interface{}{
			"status":       baseModel.StatusWithdrawn,
			"banned_until": nil,
		})
	return result.RowsAffected > 0, result.Error
}
