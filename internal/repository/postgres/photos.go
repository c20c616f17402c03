package postgres

import (
	"context"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, user_id, workout_record_id, object_key, file_name, content_type, size, uploaded_at`

type photoRepository struct {
	db
}

func NewPhotoRepository(pool *pgxpool.Pool) repository.PhotoRepository {
	return &photoRepository{db{pool: pool}}
}

func scanPhoto(row pgx.Row) (*domain.ProgressPhoto, error) {
	var p domain.ProgressPhoto
	if err := row.Scan(&p.ID, &p.UserID, &p.WorkoutRecordID, &p.ObjectKey, &p.FileName, &p.ContentType, &p.Size, &p.UploadedAt); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *photoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error) {
	if photo.WorkoutRecordID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	now := time.Now().UTC()
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO progress_photos (user_id, workout_record_id, object_key, file_name, content_type, size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		photo.UserID, photo.WorkoutRecordID, photo.ObjectKey, photo.FileName, photo.ContentType, photo.Size, now,
	).Scan(&photo.ID)
	if err != nil {
		return 0, mapError(err)
	}
	photo.UploadedAt = now
	return photo.ID, nil
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error) {
	return scanPhoto(r.conn(ctx).QueryRow(ctx, `SELECT `+photoColumns+` FROM progress_photos WHERE id = $1`, id))
}

func (r *photoRepository) ListByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error) {
	return r.list(ctx, `SELECT `+photoColumns+` FROM progress_photos WHERE workout_record_id = $1 ORDER BY id`, workoutRecordID)
}

func (r *photoRepository) DeleteByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error) {
	return r.list(ctx, `DELETE FROM progress_photos WHERE workout_record_id = $1 RETURNING `+photoColumns, workoutRecordID)
}

func (r *photoRepository) list(ctx context.Context, query string, args ...any) ([]domain.ProgressPhoto, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	photos := []domain.ProgressPhoto{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, mapError(rows.Err())
}
