package repository

import (
	"context"
	"errors"

	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/observability"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdateUsername(ctx context.Context, id, username string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	// BumpSessionVersion atomically increments the user's session-version
	// counter and returns the new value. The increment happens in a single
	// UPDATE at the database so two concurrent logins can never observe
	// the same new version.
	BumpSessionVersion(ctx context.Context, id string) (int64, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_email", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_email", "success")
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "list", "success")
	return users, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "delete", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "delete", "success")
	return nil
}

func (r *GormUserRepository) UpdateEmail(ctx context.Context, id, email string) error {
	return r.updateColumn(ctx, id, "update_email", "email", email)
}

func (r *GormUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	return r.updateColumn(ctx, id, "update_username", "username", username)
}

func (r *GormUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.updateColumn(ctx, id, "update_password", "password_hash", hash)
}

func (r *GormUserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	return r.updateColumn(ctx, id, "set_admin", "is_admin", isAdmin)
}

func (r *GormUserRepository) updateColumn(ctx context.Context, id, op, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", op, "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", op, "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", op, "success")
	return nil
}

func (r *GormUserRepository) BumpSessionVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	res := r.db.WithContext(ctx).Raw(
		"UPDATE users SET session_version = session_version + 1 WHERE id = ? RETURNING session_version",
		id,
	).Scan(&version)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "bump_session_version", "error")
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "bump_session_version", "not_found")
		return 0, ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "bump_session_version", "success")
	return version, nil
}
