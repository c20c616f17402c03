package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

type photoRepository struct {
	store *Store
}

// NewPhotoRepository creates a memory backed progress photo repository.
func NewPhotoRepository(store *Store) repository.PhotoRepository {
	return &photoRepository{store: store}
}

func (r *photoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if _, ok := r.store.state.records[photo.WorkoutRecordID]; !ok || photo.WorkoutRecordID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	photo.ID = r.store.state.nextID("photos")
	photo.UploadedAt = time.Now().UTC()
	r.store.state.photos[photo.ID] = *photo
	return photo.ID, nil
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, ok := r.store.state.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *photoRepository) ListByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.store.state.photosOf(workoutRecordID), nil
}

func (r *photoRepository) DeleteByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	photos := r.store.state.photosOf(workoutRecordID)
	for _, p := range photos {
		delete(r.store.state.photos, p.ID)
	}
	return photos, nil
}

func (st state) photosOf(workoutRecordID int64) []domain.ProgressPhoto {
	photos := make([]domain.ProgressPhoto, 0)
	for _, p := range st.photos {
		if p.WorkoutRecordID == workoutRecordID {
			photos = append(photos, p)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos
}
