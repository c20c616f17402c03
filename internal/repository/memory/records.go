package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

type workoutRecordRepository struct {
	store *Store
}

// NewWorkoutRecordRepository creates a memory backed record store.
func NewWorkoutRecordRepository(store *Store) repository.WorkoutRecordRepository {
	return &workoutRecordRepository{store: store}
}

func (r *workoutRecordRepository) Create(ctx context.Context, record *domain.WorkoutRecord) (int64, error) {
	if record.UserID <= 0 {
		return 0, errors.New("workout record requires userId")
	}
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if _, ok := r.store.state.workouts[record.WorkoutID]; !ok || record.WorkoutID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	record.ID = r.store.state.nextID("workout_records")
	record.CreatedAt = time.Now().UTC()
	stored := *record
	stored.Groups = nil
	r.store.state.records[record.ID] = stored
	return record.ID, nil
}

func (r *workoutRecordRepository) GetByID(ctx context.Context, id int64) (*domain.WorkoutRecord, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, ok := r.store.state.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *workoutRecordRepository) GetWithGroups(ctx context.Context, id int64) (*domain.WorkoutRecord, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, ok := r.store.state.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.Groups = r.store.state.recordGroupsOf(id)
	return &rec, nil
}

func (r *workoutRecordRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WorkoutRecord, error) {
	return r.list(ctx, func(rec domain.WorkoutRecord) bool { return rec.UserID == userID })
}

func (r *workoutRecordRepository) ListByWorkout(ctx context.Context, workoutID int64) ([]domain.WorkoutRecord, error) {
	return r.list(ctx, func(rec domain.WorkoutRecord) bool { return rec.WorkoutID == workoutID })
}

func (r *workoutRecordRepository) list(ctx context.Context, match func(domain.WorkoutRecord) bool) ([]domain.WorkoutRecord, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	records := make([]domain.WorkoutRecord, 0)
	for _, rec := range r.store.state.records {
		if match(rec) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

func (r *workoutRecordRepository) Update(ctx context.Context, record *domain.WorkoutRecord) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	existing, ok := r.store.state.records[record.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Date = record.Date
	existing.Duration = record.Duration
	r.store.state.records[record.ID] = existing
	for id, e := range r.store.state.exerciseRecords {
		if e.WorkoutRecordID == record.ID {
			e.Date = record.Date
			r.store.state.exerciseRecords[id] = e
		}
	}
	return nil
}

func (r *workoutRecordRepository) Delete(ctx context.Context, id int64) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.store.state.records[id]; !ok {
		return repository.ErrNotFound
	}
	r.store.state.deleteRecords([]int64{id})
	return nil
}

func (r *workoutRecordRepository) DeleteByWorkout(ctx context.Context, workoutID int64) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var ids []int64
	for id, rec := range r.store.state.records {
		if rec.WorkoutID == workoutID {
			ids = append(ids, id)
		}
	}
	r.store.state.deleteRecords(ids)
	return int64(len(ids)), nil
}

func (r *workoutRecordRepository) CreateGroup(ctx context.Context, group *domain.ExerciseRecordGroup) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if _, ok := r.store.state.records[group.WorkoutRecordID]; !ok || group.WorkoutRecordID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	group.ID = r.store.state.nextID("exercise_record_groups")
	stored := *group
	stored.Records = nil
	r.store.state.recordGroups[group.ID] = stored
	return group.ID, nil
}

func (r *workoutRecordRepository) CreateRecord(ctx context.Context, record *domain.ExerciseRecord) (int64, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	group, ok := r.store.state.recordGroups[record.GroupID]
	if !ok || record.GroupID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	record.ID = r.store.state.nextID("exercise_records")
	record.WorkoutRecordID = group.WorkoutRecordID
	stored := *record
	stored.Metrics = record.Metrics.Clone()
	r.store.state.exerciseRecords[record.ID] = stored
	return record.ID, nil
}

func (r *workoutRecordRepository) GetGroups(ctx context.Context, workoutRecordID int64) ([]domain.ExerciseRecordGroup, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.store.state.recordGroupsOf(workoutRecordID), nil
}

func (r *workoutRecordRepository) DeleteGroups(ctx context.Context, groupIDs []int64) error {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	r.store.state.deleteRecordGroups(groupIDs)
	return nil
}

func (r *workoutRecordRepository) CountByWorkout(ctx context.Context, workoutID int64) (int, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	count := 0
	for _, rec := range r.store.state.records {
		if rec.WorkoutID == workoutID {
			count++
		}
	}
	return count, nil
}

func (r *workoutRecordRepository) FirstDateByUser(ctx context.Context, userID int64) (*time.Time, error) {
	unlock, err := r.store.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var first *time.Time
	for _, rec := range r.store.state.records {
		if rec.UserID != userID {
			continue
		}
		if first == nil || rec.Date.Before(*first) {
			d := rec.Date
			first = &d
		}
	}
	return first, nil
}

func (st state) recordGroupsOf(workoutRecordID int64) []domain.ExerciseRecordGroup {
	groups := make([]domain.ExerciseRecordGroup, 0)
	for _, g := range st.recordGroups {
		if g.WorkoutRecordID != workoutRecordID {
			continue
		}
		g.Records = make([]domain.ExerciseRecord, 0)
		for _, er := range st.exerciseRecords {
			if er.GroupID == g.ID {
				er.Metrics = er.Metrics.Clone()
				g.Records = append(g.Records, er)
			}
		}
		sort.Slice(g.Records, func(i, j int) bool {
			return byPosition(g.Records[i].Position, g.Records[i].ID, g.Records[j].Position, g.Records[j].ID)
		})
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return byPosition(groups[i].Position, groups[i].ID, groups[j].Position, groups[j].ID)
	})
	return groups
}

func (st state) deleteRecordGroups(groupIDs []int64) {
	doomed := make(map[int64]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		doomed[id] = struct{}{}
		delete(st.recordGroups, id)
	}
	for id, er := range st.exerciseRecords {
		if _, ok := doomed[er.GroupID]; ok {
			delete(st.exerciseRecords, id)
		}
	}
}

func (st state) deleteRecords(recordIDs []int64) {
	var groupIDs []int64
	for _, rid := range recordIDs {
		delete(st.records, rid)
		for gid, g := range st.recordGroups {
			if g.WorkoutRecordID == rid {
				groupIDs = append(groupIDs, gid)
			}
		}
	}
	st.deleteRecordGroups(groupIDs)
}
