package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateWorkoutComposition_FullReplace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.planWorkout(t, []int{10, 8}, []int{6})
	before, err := f.workouts.GetWorkout(ctx, f.user.ID, w.ID)
	require.NoError(t, err)

	composition := []domain.ExerciseSetGroup{
		{ExerciseID: f.plank.ID, Sets: []domain.ExerciseSet{
			{Metrics: domain.Metrics{DurationSeconds: intPtr(60), Reps: intPtr(1)}},
		}},
		{ExerciseID: f.squat.ID, Sets: []domain.ExerciseSet{
			{Metrics: domain.Metrics{Weight: floatPtr(100), Reps: intPtr(5)}},
			{Metrics: domain.Metrics{Weight: floatPtr(90), Reps: intPtr(3)}},
		}},
	}

	var previous []domain.ExerciseSetGroup
	for i := 0; i < 2; i++ {
		_, err := f.workouts.UpdateWorkoutComposition(ctx, f.user.ID, w.ID, composition)
		require.NoError(t, err)

		got, err := f.workouts.GetWorkout(ctx, f.user.ID, w.ID)
		require.NoError(t, err)
		require.Len(t, got.Groups, 2)
		assert.Equal(t, f.plank.ID, got.Groups[0].ExerciseID)
		require.Len(t, got.Groups[0].Sets, 1)
		assert.Equal(t, 60, *got.Groups[0].Sets[0].DurationSeconds)
		assert.Nil(t, got.Groups[0].Sets[0].Reps)
		require.Len(t, got.Groups[1].Sets, 2)
		assert.Equal(t, 100.0, *got.Groups[1].Sets[0].Weight)
		assert.Equal(t, 3, *got.Groups[1].Sets[1].Reps)

		for _, old := range append(previous, before.Groups...) {
			_, err := f.deps.Workouts.CreateSet(ctx, &domain.ExerciseSet{GroupID: old.ID, ExerciseID: old.ExerciseID})
			assert.ErrorIs(t, err, repository.ErrInvalidReference, "group %d must be gone", old.ID)
		}
		previous = got.Groups
	}

	_, err = f.workouts.UpdateWorkoutComposition(ctx, f.user.ID, w.ID, nil)
	require.NoError(t, err)
	got, err := f.workouts.GetWorkout(ctx, f.user.ID, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Groups)
}

func TestUpdateWorkoutComposition_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.planWorkout(t, []int{10})

	_, err := f.workouts.UpdateWorkoutComposition(ctx, f.user.ID, w.ID, []domain.ExerciseSetGroup{{ExerciseID: 404}})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = f.workouts.UpdateWorkoutComposition(ctx, f.user.ID, w.ID, []domain.ExerciseSetGroup{{ExerciseID: 0}})
	assert.Equal(t, service.KindInvalidArgument, service.KindOf(err))

	_, err = f.workouts.UpdateWorkoutComposition(ctx, f.user.ID, w.ID, []domain.ExerciseSetGroup{
		{ExerciseID: f.squat.ID, Sets: []domain.ExerciseSet{{Metrics: domain.Metrics{Weight: floatPtr(-5)}}}},
	})
	assert.ErrorIs(t, err, service.ErrNegativeMetric)

	_, err = f.workouts.UpdateWorkoutComposition(ctx, f.other.ID, w.ID, nil)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	got, err := f.workouts.GetWorkout(ctx, f.user.ID, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, 10, *got.Groups[0].Sets[0].Reps)
}

func TestDeleteWorkout_RemovesRecordsAndResyncs(t *testing.T) {
	ctx := context.Background()
	files := &fakeStorage{}
	f := newFixture(t, func(d *service.Dependencies) { d.FileStorage = files })
	w1 := f.planWorkout(t, []int{5})
	w2 := f.planWorkout(t, []int{5})

	early, err := f.records.CompleteWorkout(ctx, f.user.ID, w1.ID, day(2024, 1, 1), time.Hour)
	require.NoError(t, err)
	_, err = f.records.CompleteWorkout(ctx, f.user.ID, w2.ID, day(2024, 2, 1), time.Hour)
	require.NoError(t, err)
	_, err = f.deps.Photos.Create(ctx, &domain.ProgressPhoto{UserID: f.user.ID, WorkoutRecordID: early.ID, ObjectKey: "k1"})
	require.NoError(t, err)

	err = f.workouts.DeleteWorkout(ctx, f.other.ID, w1.ID)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	require.NoError(t, f.workouts.DeleteWorkout(ctx, f.user.ID, w1.ID))

	_, err = f.workouts.GetWorkout(ctx, f.user.ID, w1.ID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
	_, err = f.records.GetWorkoutRecord(ctx, f.user.ID, early.ID)
	assert.ErrorIs(t, err, service.ErrWorkoutRecordNotFound)

	photos, err := f.deps.Photos.ListByRecord(ctx, early.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.Equal(t, []string{"k1"}, files.deleted)

	assert.Equal(t, 1, f.recordCount(t))
	assert.Equal(t, 1, f.sessionCount(t, w2.ID))
	assert.True(t, day(2024, 2, 1).Equal(*f.firstDate(t, f.user.ID)))
}

func TestWorkoutDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.workouts.CreateWorkout(ctx, f.user.ID, service.WorkoutDetails{Name: "  "}, nil)
	assert.Equal(t, service.KindInvalidArgument, service.KindOf(err))

	a := f.planWorkout(t)
	b := f.planWorkout(t)

	updated, err := f.workouts.UpdateWorkoutDetails(ctx, f.user.ID, a.ID, service.WorkoutDetails{Name: "upper", Description: "d", Pinned: true})
	require.NoError(t, err)
	assert.Equal(t, "upper", updated.Name)
	assert.True(t, updated.Pinned)

	_, err = f.workouts.UpdateWorkoutDetails(ctx, f.other.ID, a.ID, service.WorkoutDetails{Name: "mine now"})
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	list, err := f.workouts.ListWorkouts(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID, "pinned first")
	assert.Equal(t, b.ID, list[1].ID)

	others, err := f.workouts.ListWorkouts(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Empty(t, others)
}
