package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

type exerciseRepository struct {
	store *Store
}

// NewExerciseRepository creates a memory backed exercise repository.
func NewExerciseRepository(store *Store) repository.ExerciseRepository {
	return &exerciseRepository{store: store}
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	exercise.ID = r.store.state.nextID("exercises")
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.store.state.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ex, ok := r.store.state.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (r *exerciseRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Exercise, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	found := make(map[int64]domain.Exercise, len(ids))
	for _, id := range ids {
		if ex, ok := r.store.state.exercises[id]; ok {
			found[id] = ex
		}
	}
	return found, nil
}

func (r *exerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	exercises := make([]domain.Exercise, 0, len(r.store.state.exercises))
	for _, ex := range r.store.state.exercises {
		exercises = append(exercises, ex)
	}
	sort.Slice(exercises, func(i, j int) bool { return exercises[i].Name < exercises[j].Name })
	return exercises, nil
}

func (r *exerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	existing, ok := r.store.state.exercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = exercise.Name
	existing.Description = exercise.Description
	existing.MuscleGroup = exercise.MuscleGroup
	existing.MetricType = exercise.MetricType
	existing.UpdatedAt = time.Now().UTC()
	r.store.state.exercises[exercise.ID] = existing
	*exercise = existing
	return nil
}

func (r *exerciseRepository) Delete(ctx context.Context, id int64) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.store.state.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	for _, g := range r.store.state.setGroups {
		if g.ExerciseID == id {
			return repository.ErrInUse
		}
	}
	for _, g := range r.store.state.recordGroups {
		if g.ExerciseID == id {
			return repository.ErrInUse
		}
	}
	delete(r.store.state.exercises, id)
	return nil
}
