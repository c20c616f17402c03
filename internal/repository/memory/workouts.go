package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

type workoutRepository struct {
	store *Store
}

// NewWorkoutRepository creates a memory backed plan store.
func NewWorkoutRepository(store *Store) repository.WorkoutRepository {
	return &workoutRepository{store: store}
}

func (r *workoutRepository) Create(ctx context.Context, workout *domain.Workout) (int64, error) {
	if workout.UserID <= 0 || workout.Name == "" {
		return 0, errors.New("workout requires userId and name")
	}
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	workout.ID = r.store.state.nextID("workouts")
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	stored := *workout
	stored.Groups = nil
	r.store.state.workouts[workout.ID] = stored
	return workout.ID, nil
}

func (r *workoutRepository) GetByID(ctx context.Context, id int64) (*domain.Workout, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, ok := r.store.state.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *workoutRepository) GetWithGroups(ctx context.Context, id int64) (*domain.Workout, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, ok := r.store.state.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.Groups = r.store.state.setGroupsOf(id)
	return &w, nil
}

func (r *workoutRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Workout, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	workouts := make([]domain.Workout, 0)
	for _, w := range r.store.state.workouts {
		if w.UserID == userID {
			workouts = append(workouts, w)
		}
	}
	// Pinned first, then newest first
	sort.Slice(workouts, func(i, j int) bool {
		if workouts[i].Pinned != workouts[j].Pinned {
			return workouts[i].Pinned
		}
		return workouts[i].ID > workouts[j].ID
	})
	return workouts, nil
}

func (r *workoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	existing, ok := r.store.state.workouts[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = workout.Name
	existing.Description = workout.Description
	existing.Pinned = workout.Pinned
	existing.UpdatedAt = time.Now().UTC()
	r.store.state.workouts[workout.ID] = existing
	return nil
}

func (r *workoutRepository) SetCompletedSessionCount(ctx context.Context, workoutID int64, count int) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	existing, ok := r.store.state.workouts[workoutID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.CompletedSessionCount = count
	r.store.state.workouts[workoutID] = existing
	return nil
}

func (r *workoutRepository) Delete(ctx context.Context, id int64) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.store.state.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	var groupIDs []int64
	for gid, g := range r.store.state.setGroups {
		if g.WorkoutID == id {
			groupIDs = append(groupIDs, gid)
		}
	}
	r.store.state.deleteSetGroups(groupIDs)
	delete(r.store.state.workouts, id)
	return nil
}

func (r *workoutRepository) CreateGroup(ctx context.Context, group *domain.ExerciseSetGroup) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if _, ok := r.store.state.workouts[group.WorkoutID]; !ok || group.WorkoutID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	group.ID = r.store.state.nextID("exercise_set_groups")
	stored := *group
	stored.Sets = nil
	r.store.state.setGroups[group.ID] = stored
	return group.ID, nil
}

func (r *workoutRepository) CreateSet(ctx context.Context, set *domain.ExerciseSet) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	group, ok := r.store.state.setGroups[set.GroupID]
	if !ok || set.GroupID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	set.ID = r.store.state.nextID("exercise_sets")
	set.WorkoutID = group.WorkoutID
	stored := *set
	stored.Metrics = set.Metrics.Clone()
	r.store.state.sets[set.ID] = stored
	return set.ID, nil
}

func (r *workoutRepository) GetGroups(ctx context.Context, workoutID int64) ([]domain.ExerciseSetGroup, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.store.state.setGroupsOf(workoutID), nil
}

func (r *workoutRepository) DeleteGroups(ctx context.Context, groupIDs []int64) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	r.store.state.deleteSetGroups(groupIDs)
	return nil
}

func (st state) setGroupsOf(workoutID int64) []domain.ExerciseSetGroup {
	groups := make([]domain.ExerciseSetGroup, 0)
	for _, g := range st.setGroups {
		if g.WorkoutID != workoutID {
			continue
		}
		g.Sets = make([]domain.ExerciseSet, 0)
		for _, s := range st.sets {
			if s.GroupID == g.ID {
				s.Metrics = s.Metrics.Clone()
				g.Sets = append(g.Sets, s)
			}
		}
		sort.Slice(g.Sets, func(i, j int) bool {
			return byPosition(g.Sets[i].Position, g.Sets[i].ID, g.Sets[j].Position, g.Sets[j].ID)
		})
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return byPosition(groups[i].Position, groups[i].ID, groups[j].Position, groups[j].ID)
	})
	return groups
}

func (st state) deleteSetGroups(groupIDs []int64) {
	doomed := make(map[int64]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		doomed[id] = struct{}{}
		delete(st.setGroups, id)
	}
	for sid, s := range st.sets {
		if _, ok := doomed[s.GroupID]; ok {
			delete(st.sets, sid)
		}
	}
}

func byPosition(posA int, idA int64, posB int, idB int64) bool {
	if posA != posB {
		return posA < posB
	}
	return idA < idB
}
