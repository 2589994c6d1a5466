package testkit

import (
	"context"
	"time"

	userModel "footstep/internal/domain/user/model"
	baseModel "footstep/pkg/model"

	"gorm.io/gorm"
)

// UserRepo 内存版 UserRepository
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *userModel.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Nickname == user.Nickname {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.Now()
	if user.Status == "" {
		user.Status = baseModel.StatusNormal
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uint) (*userModel.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*userModel.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepo) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	return ok && u.Status.IsNormal(), nil
}

func (r *UserRepo) NicknamesByIDs(_ context.Context, ids []uint) (map[uint]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	names := make(map[uint]string, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			names[id] = u.Nickname
		}
	}
	return names, nil
}

func (r *UserRepo) modify(id uint, fn func(u *userModel.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		fn(u)
	}
	return nil
}

func (r *UserRepo) UpdateNickname(_ context.Context, id uint, nickname string) error {
	return r.modify(id, func(u *userModel.User) { u.Nickname = nickname })
}

func (r *UserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	return r.modify(id, func(u *userModel.User) { u.Password = hash })
}

func (r *UserRepo) UpdateProfileImage(_ context.Context, id uint, url *string) error {
	return r.modify(id, func(u *userModel.User) { u.ProfileImageURL = url })
}

func (r *UserRepo) ClearBan(_ context.Context, id uint) error {
	return r.modify(id, func(u *userModel.User) { u.BannedUntil = nil })
}

func (r *UserRepo) Suspend(_ context.Context, id uint, until, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || !u.Status.IsNormal() || u.SuspendedAt(at) {
		return false, nil
	}
	u.BannedUntil = &until
	u.LastSuspendedAt = &at
	return true, nil
}

func (r *UserRepo) Withdraw(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || !u.Status.IsNormal() {
		return false, nil
	}
	u.Status = baseModel.StatusWithdrawn
	u.BannedUntil = nil
	return true, nil
}
