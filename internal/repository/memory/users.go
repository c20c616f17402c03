package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

type userRepository struct {
	store *Store
}

// NewUserRepository creates a memory backed user repository.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return 0, errors.New("user email, password hash, and role are required")
	}
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	for _, u := range r.store.state.users {
		if strings.EqualFold(u.Email, user.Email) {
			return 0, repository.ErrDuplicate
		}
	}
	user.ID = r.store.state.nextID("users")
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.state.users[user.ID] = cloneUser(*user)
	return user.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, u := range r.store.state.users {
		if strings.EqualFold(u.Email, email) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.store.state.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *userRepository) SetFirstWorkoutDate(ctx context.Context, userID int64, date *time.Time) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	u, ok := r.store.state.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if date == nil {
		u.FirstWorkoutDate = nil
	} else {
		d := *date
		u.FirstWorkoutDate = &d
	}
	u.UpdatedAt = time.Now().UTC()
	r.store.state.users[userID] = u
	return nil
}
