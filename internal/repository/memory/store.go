// Package memory keeps every collection in process memory. It backs the
// "memory" database driver and the service tests.
package memory

import (
	"context"
	"sync"

	"alcyxob/fitness-tracker/internal/domain"
)

type txKey struct{}

// Store holds the shared state of all memory repositories.
type Store struct {
	mu    sync.Mutex // guards state
	txMu  sync.Mutex // held by a transaction, or by a single call outside one
	state state
}

type state struct {
	seq             map[string]int64
	users           map[int64]domain.User
	exercises       map[int64]domain.Exercise
	workouts        map[int64]domain.Workout
	setGroups       map[int64]domain.ExerciseSetGroup
	sets            map[int64]domain.ExerciseSet
	records         map[int64]domain.WorkoutRecord
	recordGroups    map[int64]domain.ExerciseRecordGroup
	exerciseRecords map[int64]domain.ExerciseRecord
	photos          map[int64]domain.ProgressPhoto
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() state {
	return state{
		seq:             map[string]int64{},
		users:           map[int64]domain.User{},
		exercises:       map[int64]domain.Exercise{},
		workouts:        map[int64]domain.Workout{},
		setGroups:       map[int64]domain.ExerciseSetGroup{},
		sets:            map[int64]domain.ExerciseSet{},
		records:         map[int64]domain.WorkoutRecord{},
		recordGroups:    map[int64]domain.ExerciseRecordGroup{},
		exerciseRecords: map[int64]domain.ExerciseRecord{},
		photos:          map[int64]domain.ProgressPhoto{},
	}
}

func (st state) clone() state {
	c := newState()
	for k, v := range st.seq {
		c.seq[k] = v
	}
	for k, v := range st.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range st.exercises {
		c.exercises[k] = v
	}
	for k, v := range st.workouts {
		c.workouts[k] = v
	}
	for k, v := range st.setGroups {
		c.setGroups[k] = v
	}
	for k, v := range st.sets {
		v.Metrics = v.Metrics.Clone()
		c.sets[k] = v
	}
	for k, v := range st.records {
		c.records[k] = v
	}
	for k, v := range st.recordGroups {
		c.recordGroups[k] = v
	}
	for k, v := range st.exerciseRecords {
		v.Metrics = v.Metrics.Clone()
		c.exerciseRecords[k] = v
	}
	for k, v := range st.photos {
		c.photos[k] = v
	}
	return c
}

func cloneUser(u domain.User) domain.User {
	if u.FirstWorkoutDate != nil {
		d := *u.FirstWorkoutDate
		u.FirstWorkoutDate = &d
	}
	return u
}

func (st state) nextID(table string) int64 {
	st.seq[table]++
	return st.seq[table]
}

// WithinTransaction runs fn against the live state and restores the snapshot
// taken beforehand if fn fails. Nested calls join the outer transaction.
// Calls made outside the transaction wait until it is over, so a rollback
// never discards their writes and they never see uncommitted rows.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Atomic is always true: a failed transaction restores the snapshot.
func (s *Store) Atomic() bool {
	return true
}

// lock acquires the state lock unless ctx is already done. Outside a
// transaction it also takes txMu for the duration of the call.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock, nil
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}, nil
}
