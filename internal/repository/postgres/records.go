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

const recordColumns = `id, user_id, workout_id, date, duration_ns, created_at`

type workoutRecordRepository struct {
	db
}

func NewWorkoutRecordRepository(pool *pgxpool.Pool) repository.WorkoutRecordRepository {
	return &workoutRecordRepository{db{pool: pool}}
}

func scanRecord(row pgx.Row) (*domain.WorkoutRecord, error) {
	var rec domain.WorkoutRecord
	var durationNs int64
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.WorkoutID, &rec.Date, &durationNs, &rec.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	rec.Duration = time.Duration(durationNs)
	rec.Date = rec.Date.UTC()
	return &rec, nil
}

func (r *workoutRecordRepository) Create(ctx context.Context, record *domain.WorkoutRecord) (int64, error) {
	if record.UserID <= 0 {
		return 0, errors.New("workout record requires userId")
	}
	if record.WorkoutID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	now := time.Now().UTC()
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO workout_records (user_id, workout_id, date, duration_ns, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		record.UserID, record.WorkoutID, record.Date, int64(record.Duration), now,
	).Scan(&record.ID)
	if err != nil {
		return 0, mapError(err)
	}
	record.CreatedAt = now
	return record.ID, nil
}

func (r *workoutRecordRepository) GetByID(ctx context.Context, id int64) (*domain.WorkoutRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordColumns+` FROM workout_records WHERE id = $1`, id))
}

func (r *workoutRecordRepository) GetWithGroups(ctx context.Context, id int64) (*domain.WorkoutRecord, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Groups, err = r.GetGroups(ctx, id); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *workoutRecordRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WorkoutRecord, error) {
	return r.list(ctx, `SELECT `+recordColumns+` FROM workout_records WHERE user_id = $1 ORDER BY date DESC, id DESC`, userID)
}

func (r *workoutRecordRepository) ListByWorkout(ctx context.Context, workoutID int64) ([]domain.WorkoutRecord, error) {
	return r.list(ctx, `SELECT `+recordColumns+` FROM workout_records WHERE workout_id = $1 ORDER BY date DESC, id DESC`, workoutID)
}

func (r *workoutRecordRepository) list(ctx context.Context, query string, args ...any) ([]domain.WorkoutRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	records := []domain.WorkoutRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, mapError(rows.Err())
}

func (r *workoutRecordRepository) Update(ctx context.Context, record *domain.WorkoutRecord) error {
	err := expectOne(r.conn(ctx).Exec(ctx,
		`UPDATE workout_records SET date = $2, duration_ns = $3 WHERE id = $1`,
		record.ID, record.Date, int64(record.Duration),
	))
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `UPDATE exercise_records SET date = $2 WHERE workout_record_id = $1`, record.ID, record.Date)
	return mapError(err)
}

// Delete cascades to groups, exercise records and photos through the foreign keys.
func (r *workoutRecordRepository) Delete(ctx context.Context, id int64) error {
	return expectOne(r.conn(ctx).Exec(ctx, `DELETE FROM workout_records WHERE id = $1`, id))
}

func (r *workoutRecordRepository) DeleteByWorkout(ctx context.Context, workoutID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM workout_records WHERE workout_id = $1`, workoutID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *workoutRecordRepository) CreateGroup(ctx context.Context, group *domain.ExerciseRecordGroup) (int64, error) {
	if group.WorkoutRecordID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO exercise_record_groups (workout_record_id, exercise_id, position) VALUES ($1, $2, $3) RETURNING id`,
		group.WorkoutRecordID, group.ExerciseID, group.Position,
	).Scan(&group.ID)
	if err != nil {
		return 0, mapError(err)
	}
	return group.ID, nil
}

func (r *workoutRecordRepository) CreateRecord(ctx context.Context, record *domain.ExerciseRecord) (int64, error) {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO exercise_records (group_id, workout_record_id, exercise_id, date, position, weight, reps, duration_seconds)
		SELECT g.id, g.workout_record_id, $2, $3, $4, $5, $6, $7 FROM exercise_record_groups g WHERE g.id = $1
		RETURNING id, workout_record_id`,
		record.GroupID, record.ExerciseID, record.Date, record.Position, record.Weight, record.Reps, record.DurationSeconds,
	).Scan(&record.ID, &record.WorkoutRecordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrInvalidReference
	}
	if err != nil {
		return 0, mapError(err)
	}
	return record.ID, nil
}

func (r *workoutRecordRepository) GetGroups(ctx context.Context, workoutRecordID int64) ([]domain.ExerciseRecordGroup, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, workout_record_id, exercise_id, position FROM exercise_record_groups
		WHERE workout_record_id = $1 ORDER BY position, id`, workoutRecordID)
	if err != nil {
		return nil, mapError(err)
	}
	groups := []domain.ExerciseRecordGroup{}
	index := map[int64]int{}
	for rows.Next() {
		var g domain.ExerciseRecordGroup
		if err := rows.Scan(&g.ID, &g.WorkoutRecordID, &g.ExerciseID, &g.Position); err != nil {
			rows.Close()
			return nil, mapError(err)
		}
		g.Records = []domain.ExerciseRecord{}
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
		`SELECT id, group_id, workout_record_id, exercise_id, date, position, weight, reps, duration_seconds
		FROM exercise_records WHERE workout_record_id = $1 ORDER BY position, id`, workoutRecordID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.ExerciseRecord
		if err := rows.Scan(&e.ID, &e.GroupID, &e.WorkoutRecordID, &e.ExerciseID, &e.Date, &e.Position, &e.Weight, &e.Reps, &e.DurationSeconds); err != nil {
			return nil, mapError(err)
		}
		e.Date = e.Date.UTC()
		if i, ok := index[e.GroupID]; ok {
			groups[i].Records = append(groups[i].Records, e)
		}
	}
	return groups, mapError(rows.Err())
}

func (r *workoutRecordRepository) DeleteGroups(ctx context.Context, groupIDs []int64) error {
	if len(groupIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM exercise_record_groups WHERE id = ANY($1)`, groupIDs)
	return mapError(err)
}

func (r *workoutRecordRepository) CountByWorkout(ctx context.Context, workoutID int64) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM workout_records WHERE workout_id = $1`, workoutID).Scan(&n)
	return n, mapError(err)
}

// FirstDateByUser returns NULL, scanned as nil, when the user has no records.
func (r *workoutRecordRepository) FirstDateByUser(ctx context.Context, userID int64) (*time.Time, error) {
	var first *time.Time
	if err := r.conn(ctx).QueryRow(ctx, `SELECT min(date) FROM workout_records WHERE user_id = $1`, userID).Scan(&first); err != nil {
		return nil, mapError(err)
	}
	if first != nil {
		utc := first.UTC()
		first = &utc
	}
	return first, nil
}
