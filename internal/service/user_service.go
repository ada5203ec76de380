package service

import (
	"context"
	"errors"

	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/observability"
	"go-session-auth-service/internal/repository"
	"go-session-auth-service/internal/security"

	"github.com/google/uuid"
)

// UserService covers the profile and admin CRUD around the auth core.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) UpdateEmail(ctx context.Context, userID, email string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	return s.users.UpdateEmail(ctx, userID, email)
}

func (s *UserService) UpdateUsername(ctx context.Context, userID, username string) error {
	return s.users.UpdateUsername(ctx, userID, username)
}

// UpdatePassword requires the current password; a mismatch reads exactly
// like wrong login credentials.
func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !security.VerifyPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

type CreateUserParams struct {
	Email    string
	Username string
	Password string
	IsAdmin  bool
}

func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	if _, err := s.users.FindByEmail(ctx, p.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	hash, err := security.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: hash,
		IsAdmin:      p.IsAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.RecordAdminUserMutation("create")
	return user, nil
}

type UpdateUserParams struct {
	Email    *string
	Username *string
	Password *string
}

func (s *UserService) UpdateUser(ctx context.Context, id string, p UpdateUserParams) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Email != nil && *p.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *p.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		if err := s.users.UpdateEmail(ctx, id, *p.Email); err != nil {
			return err
		}
	}
	if p.Username != nil {
		if err := s.users.UpdateUsername(ctx, id, *p.Username); err != nil {
			return err
		}
	}
	if p.Password != nil {
		hash, err := security.HashPassword(*p.Password)
		if err != nil {
			return err
		}
		if err := s.users.UpdatePasswordHash(ctx, id, hash); err != nil {
			return err
		}
	}
	observability.RecordAdminUserMutation("update")
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	observability.RecordAdminUserMutation("delete")
	return nil
}

func (s *UserService) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.SetAdmin(ctx, id, isAdmin); err != nil {
		return err
	}
	observability.RecordAdminUserMutation("set_admin")
	return nil
}
