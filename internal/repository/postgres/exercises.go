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

const exerciseColumns = `id, created_by, name, description, muscle_group, metric_type, created_at, updated_at`

type exerciseRepository struct {
	db
}

func NewExerciseRepository(pool *pgxpool.Pool) repository.ExerciseRepository {
	return &exerciseRepository{db{pool: pool}}
}

func scanExercise(row pgx.Row) (*domain.Exercise, error) {
	var e domain.Exercise
	var metricType string
	if err := row.Scan(&e.ID, &e.CreatedBy, &e.Name, &e.Description, &e.MuscleGroup, &metricType, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	e.MetricType = domain.MetricType(metricType)
	return &e, nil
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (int64, error) {
	if exercise.Name == "" || exercise.CreatedBy <= 0 {
		return 0, errors.New("exercise name and creator are required")
	}
	now := time.Now().UTC()
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO exercises (created_by, name, description, muscle_group, metric_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		exercise.CreatedBy, exercise.Name, exercise.Description, exercise.MuscleGroup, string(exercise.MetricType), now,
	).Scan(&exercise.ID)
	if err != nil {
		return 0, mapError(err)
	}
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	return scanExercise(r.conn(ctx).QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
}

func (r *exerciseRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Exercise, error) {
	out := make(map[int64]domain.Exercise, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	exercises, err := r.list(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range exercises {
		out[e.ID] = e
	}
	return out, nil
}

func (r *exerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	return r.list(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY name, id`)
}

func (r *exerciseRepository) list(ctx context.Context, query string, args ...any) ([]domain.Exercise, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	exercises := []domain.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *e)
	}
	return exercises, mapError(rows.Err())
}

func (r *exerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	exercise.UpdatedAt = time.Now().UTC()
	return expectOne(r.conn(ctx).Exec(ctx,
		`UPDATE exercises SET name = $2, description = $3, muscle_group = $4, metric_type = $5, updated_at = $6 WHERE id = $1`,
		exercise.ID, exercise.Name, exercise.Description, exercise.MuscleGroup, string(exercise.MetricType), exercise.UpdatedAt,
	))
}

// Delete relies on the foreign keys of the group tables to refuse deleting
// an exercise that is still referenced.
func (r *exerciseRepository) Delete(ctx context.Context, id int64) error {
	err := expectOne(r.conn(ctx).Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id))
	if errors.Is(err, repository.ErrInvalidReference) {
		return repository.ErrInUse
	}
	return err
}
