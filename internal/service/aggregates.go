package service

import (
	"context"
	"time"

	"alcyxob/fitness-tracker/internal/observability"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/telemetry/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// AggregateMaintainer recomputes the denormalized aggregates from the record
// store. Both operations are idempotent and skip the write when the stored
// value already matches.
type AggregateMaintainer struct {
	workouts repository.WorkoutRepository
	records  repository.WorkoutRecordRepository
	users    repository.UserRepository
}

func NewAggregateMaintainer(
	workouts repository.WorkoutRepository,
	records repository.WorkoutRecordRepository,
	users repository.UserRepository,
) *AggregateMaintainer {
	return &AggregateMaintainer{
		workouts: workouts,
		records:  records,
		users:    users,
	}
}

// ResyncSessionCount overwrites the workout's completed session count with
// the number of records referencing it.
func (m *AggregateMaintainer) ResyncSessionCount(ctx context.Context, workoutID int64) (err error) {
	ctx, span := tracing.Start(ctx, "service.aggregates.resyncSessionCount")
	span.SetAttributes(attribute.Int64("workout.id", workoutID))
	defer func() { tracing.End(span, err) }()

	count, err := m.records.CountByWorkout(ctx, workoutID)
	if err != nil {
		return err
	}
	workout, err := m.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return err
	}
	if workout.CompletedSessionCount == count {
		observability.RecordResync("session_count", false)
		logrus.Debugf("resync session count: workout %d unchanged at %d", workoutID, count)
		return nil
	}
	if err = m.workouts.SetCompletedSessionCount(ctx, workoutID, count); err != nil {
		return err
	}
	observability.RecordResync("session_count", true)
	logrus.Debugf("resync session count: workout %d %d -> %d", workoutID, workout.CompletedSessionCount, count)
	return nil
}

// ResyncFirstWorkoutDate overwrites the user's first workout date with the
// minimum record date, clearing it when the user has no records left.
func (m *AggregateMaintainer) ResyncFirstWorkoutDate(ctx context.Context, userID int64) (err error) {
	ctx, span := tracing.Start(ctx, "service.aggregates.resyncFirstWorkoutDate")
	span.SetAttributes(attribute.Int64("user.id", userID))
	defer func() { tracing.End(span, err) }()

	first, err := m.records.FirstDateByUser(ctx, userID)
	if err != nil {
		return err
	}
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if sameDate(user.FirstWorkoutDate, first) {
		observability.RecordResync("first_workout_date", false)
		logrus.Debugf("resync first workout date: user %d unchanged", userID)
		return nil
	}
	if err = m.users.SetFirstWorkoutDate(ctx, userID, first); err != nil {
		return err
	}
	observability.RecordResync("first_workout_date", true)
	logrus.Debugf("resync first workout date: user %d updated (cleared=%t)", userID, first == nil)
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
