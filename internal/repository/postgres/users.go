package postgres

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, role, first_workout_date, created_at, updated_at`

type userRepository struct {
	db
}

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{db{pool: pool}}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.FirstWorkoutDate, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return 0, errors.New("user email, password hash, and role are required")
	}
	now := time.Now().UTC()
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		user.Name, user.Email, user.PasswordHash, string(user.Role), now,
	).Scan(&user.ID)
	if err != nil {
		return 0, mapError(err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) SetFirstWorkoutDate(ctx context.Context, userID int64, date *time.Time) error {
	return expectOne(r.conn(ctx).Exec(ctx, `UPDATE users SET first_workout_date = $2 WHERE id = $1`, userID, date))
}
