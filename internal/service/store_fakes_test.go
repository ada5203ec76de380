package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/repository"
)

// inMemoryUserRepo implements repository.UserRepository for service
// tests. The session-version bump is atomic under the mutex, matching
// the single-UPDATE guarantee of the real store.
type inMemoryUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	failAll error
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{byID: map[string]*domain.User{}}
}

func (r *inMemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *inMemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.byID[cp.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, *u)
	}
	return users, nil
}

func (r *inMemoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *inMemoryUserRepo) UpdateEmail(_ context.Context, id, email string) error {
	return r.mutate(id, func(u *domain.User) { u.Email = email })
}

func (r *inMemoryUserRepo) UpdateUsername(_ context.Context, id, username string) error {
	return r.mutate(id, func(u *domain.User) { u.Username = username })
}

func (r *inMemoryUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *inMemoryUserRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	return r.mutate(id, func(u *domain.User) { u.IsAdmin = isAdmin })
}

func (r *inMemoryUserRepo) BumpSessionVersion(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	u.SessionVersion++
	return u.SessionVersion, nil
}

func (r *inMemoryUserRepo) mutate(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

// unreachableLedger simulates a revocation store outage.
type unreachableLedger struct{}

func (unreachableLedger) Revoke(context.Context, string, time.Duration) error {
	return errors.New("ledger unreachable")
}

func (unreachableLedger) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("ledger unreachable")
}
