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

const workoutColumns = `id, user_id, name, description, pinned, completed_session_count, created_at, updated_at`

type workoutRepository struct {
	db
}

func NewWorkoutRepository(pool *pgxpool.Pool) repository.WorkoutRepository {
	return &workoutRepository{db{pool: pool}}
}

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var w domain.Workout
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Pinned, &w.CompletedSessionCount, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &w, nil
}

func (r *workoutRepository) Create(ctx context.Context, workout *domain.Workout) (int64, error) {
	if workout.UserID <= 0 || workout.Name == "" {
		return 0, errors.New("workout requires userId and name")
	}
	now := time.Now().UTC()
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO workouts (user_id, name, description, pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		workout.UserID, workout.Name, workout.Description, workout.Pinned, now,
	).Scan(&workout.ID)
	if err != nil {
		return 0, mapError(err)
	}
	workout.CreatedAt = now
	workout.UpdatedAt = now
	return workout.ID, nil
}

func (r *workoutRepository) GetByID(ctx context.Context, id int64) (*domain.Workout, error) {
	return scanWorkout(r.conn(ctx).QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id))
}

func (r *workoutRepository) GetWithGroups(ctx context.Context, id int64) (*domain.Workout, error) {
	workout, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workout.Groups, err = r.GetGroups(ctx, id); err != nil {
		return nil, err
	}
	return workout, nil
}

func (r *workoutRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Workout, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE user_id = $1 ORDER BY pinned DESC, id DESC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	workouts := []domain.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, mapError(rows.Err())
}

func (r *workoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	workout.UpdatedAt = time.Now().UTC()
	return expectOne(r.conn(ctx).Exec(ctx,
		`UPDATE workouts SET name = $2, description = $3, pinned = $4, updated_at = $5 WHERE id = $1`,
		workout.ID, workout.Name, workout.Description, workout.Pinned, workout.UpdatedAt,
	))
}

func (r *workoutRepository) SetCompletedSessionCount(ctx context.Context, workoutID int64, count int) error {
	return expectOne(r.conn(ctx).Exec(ctx, `UPDATE workouts SET completed_session_count = $2 WHERE id = $1`, workoutID, count))
}

// Delete cascades to groups and sets through the foreign keys.
func (r *workoutRepository) Delete(ctx context.Context, id int64) error {
	return expectOne(r.conn(ctx).Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id))
}

func (r *workoutRepository) CreateGroup(ctx context.Context, group *domain.ExerciseSetGroup) (int64, error) {
	if group.WorkoutID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO exercise_set_groups (workout_id, exercise_id, position) VALUES ($1, $2, $3) RETURNING id`,
		group.WorkoutID, group.ExerciseID, group.Position,
	).Scan(&group.ID)
	if err != nil {
		return 0, mapError(err)
	}
	return group.ID, nil
}

// CreateSet copies the workout id from the parent group; no parent row means
// no insert.
func (r *workoutRepository) CreateSet(ctx context.Context, set *domain.ExerciseSet) (int64, error) {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO exercise_sets (group_id, workout_id, exercise_id, position, weight, reps, duration_seconds)
		SELECT g.id, g.workout_id, $2, $3, $4, $5, $6 FROM exercise_set_groups g WHERE g.id = $1
		RETURNING id, workout_id`,
		set.GroupID, set.ExerciseID, set.Position, set.Weight, set.Reps, set.DurationSeconds,
	).Scan(&set.ID, &set.WorkoutID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrInvalidReference
	}
	if err != nil {
		return 0, mapError(err)
	}
	return set.ID, nil
}

func (r *workoutRepository) GetGroups(ctx context.Context, workoutID int64) ([]domain.ExerciseSetGroup, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, workout_id, exercise_id, position FROM exercise_set_groups
		WHERE workout_id = $1 ORDER BY position, id`, workoutID)
	if err != nil {
		return nil, mapError(err)
	}
	groups := []domain.ExerciseSetGroup{}
	index := map[int64]int{}
	for rows.Next() {
		var g domain.ExerciseSetGroup
		if err := rows.Scan(&g.ID, &g.WorkoutID, &g.ExerciseID, &g.Position); err != nil {
			rows.Close()
			return nil, mapError(err)
		}
		g.Sets = []domain.ExerciseSet{}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	rows, err = r.conn(ctx).Query(ctx,
		`SELECT id, group_id, workout_id, exercise_id, position, weight, reps, duration_seconds
		FROM exercise_sets WHERE workout_id = $1 ORDER BY position, id`, workoutID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.ExerciseSet
		if err := rows.Scan(&s.ID, &s.GroupID, &s.WorkoutID, &s.ExerciseID, &s.Position, &s.Weight, &s.Reps, &s.DurationSeconds); err != nil {
			return nil, mapError(err)
		}
		if i, ok := index[s.GroupID]; ok {
			groups[i].Sets = append(groups[i].Sets, s)
		}
	}
	return groups, mapError(rows.Err())
}

// DeleteGroups cascades to the sets through the foreign key.
func (r *workoutRepository) DeleteGroups(ctx context.Context, groupIDs []int64) error {
	if len(groupIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM exercise_set_groups WHERE id = ANY($1)`, groupIDs)
	return mapError(err)
}
