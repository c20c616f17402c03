package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/repository/memory"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/stretchr/testify/require"
)

var (
	errInjected = errors.New("injected failure")
	testNow     = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func reps(n int) domain.Metrics { return domain.Metrics{Reps: intPtr(n)} }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store    *memory.Store
	deps     service.Dependencies
	workouts service.WorkoutService
	records  service.WorkoutRecordService

	user  *domain.User
	other *domain.User
	squat *domain.Exercise
	plank *domain.Exercise
}

// newFixture builds services over a fresh memory store. wrap may replace
// dependencies (fault injection) before the services are created.
func newFixture(t *testing.T, wrap ...func(*service.Dependencies)) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	deps := service.Dependencies{
		Transactor: store,
		Users:      memory.NewUserRepository(store),
		Exercises:  memory.NewExerciseRepository(store),
		Workouts:   memory.NewWorkoutRepository(store),
		Records:    memory.NewWorkoutRecordRepository(store),
		Photos:     memory.NewPhotoRepository(store),
		Now:        func() time.Time { return testNow },
	}

	f := &fixture{store: store}
	f.user = &domain.User{Name: "u", Email: "u@example.com", PasswordHash: "x", Role: domain.RoleUser}
	f.other = &domain.User{Name: "o", Email: "o@example.com", PasswordHash: "x", Role: domain.RoleUser}
	for _, u := range []*domain.User{f.user, f.other} {
		_, err := deps.Users.Create(ctx, u)
		require.NoError(t, err)
	}
	f.squat = &domain.Exercise{CreatedBy: f.user.ID, Name: "squat", MetricType: domain.MetricWeightReps}
	f.plank = &domain.Exercise{CreatedBy: f.user.ID, Name: "plank", MetricType: domain.MetricDuration}
	for _, e := range []*domain.Exercise{f.squat, f.plank} {
		_, err := deps.Exercises.Create(ctx, e)
		require.NoError(t, err)
	}

	for _, w := range wrap {
		w(&deps)
	}
	f.deps = deps
	f.workouts = service.NewWorkoutService(deps)
	f.records = service.NewWorkoutRecordService(deps)
	return f
}

// planWorkout creates a workout for the fixture user with one squat group per entry of sets.
func (f *fixture) planWorkout(t *testing.T, sets ...[]int) *domain.Workout {
	t.Helper()
	groups := make([]domain.ExerciseSetGroup, len(sets))
	for i, rs := range sets {
		g := domain.ExerciseSetGroup{ExerciseID: f.squat.ID}
		for _, r := range rs {
			g.Sets = append(g.Sets, domain.ExerciseSet{Metrics: reps(r)})
		}
		groups[i] = g
	}
	w, err := f.workouts.CreateWorkout(context.Background(), f.user.ID, service.WorkoutDetails{Name: "legs"}, groups)
	require.NoError(t, err)
	return w
}

func (f *fixture) sessionCount(t *testing.T, workoutID int64) int {
	t.Helper()
	w, err := f.deps.Workouts.GetByID(context.Background(), workoutID)
	require.NoError(t, err)
	return w.CompletedSessionCount
}

func (f *fixture) firstDate(t *testing.T, userID int64) *time.Time {
	t.Helper()
	u, err := f.deps.Users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.FirstWorkoutDate
}

func (f *fixture) recordCount(t *testing.T) int {
	t.Helper()
	list, err := f.deps.Records.ListByUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	return len(list)
}

// faultyRecords fails the failAt-th CreateRecord call.
type faultyRecords struct {
	repository.WorkoutRecordRepository
	failAt int
	calls  int
}

func (r *faultyRecords) CreateRecord(ctx context.Context, record *domain.ExerciseRecord) (int64, error) {
	r.calls++
	if r.calls == r.failAt {
		return 0, errInjected
	}
	return r.WorkoutRecordRepository.CreateRecord(ctx, record)
}

// faultyUsers fails every first workout date write.
type faultyUsers struct {
	repository.UserRepository
}

func (u faultyUsers) SetFirstWorkoutDate(context.Context, int64, *time.Time) error {
	return errInjected
}

// countingWorkouts counts session count writes.
type countingWorkouts struct {
	repository.WorkoutRepository
	writes int
}

func (w *countingWorkouts) SetCompletedSessionCount(ctx context.Context, workoutID int64, count int) error {
	w.writes++
	return w.WorkoutRepository.SetCompletedSessionCount(ctx, workoutID, count)
}

// countingUsers counts first workout date writes.
type countingUsers struct {
	repository.UserRepository
	writes int
}

func (u *countingUsers) SetFirstWorkoutDate(ctx context.Context, userID int64, date *time.Time) error {
	u.writes++
	return u.UserRepository.SetFirstWorkoutDate(ctx, userID, date)
}

// passthrough commits every call on its own, like a store without transactions.
type passthrough struct{}

func (passthrough) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthrough) Atomic() bool { return false }

// fakeStorage hands out deterministic URLs and remembers deleted keys.
type fakeStorage struct {
	deleted []string
	failGet bool
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://upload.test/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.failGet {
		return "", errInjected
	}
	return "https://download.test/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}
