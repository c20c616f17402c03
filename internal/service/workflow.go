package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-tracker/internal/observability"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/telemetry/tracing"

	"github.com/sirupsen/logrus"
)

// runWorkflow wraps one workflow invocation in a span and records its outcome.
func runWorkflow(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	ctx, span := tracing.Start(ctx, "service.workflow."+name)
	start := time.Now()
	defer func() {
		tracing.End(span, err)
		outcome := outcomeOf(err)
		observability.RecordWorkflow(name, outcome, time.Since(start))
		if outcome == observability.OutcomePartial || (outcome == observability.OutcomeFailed && KindOf(err) == KindUnexpected) {
			logrus.WithError(err).WithField("workflow", name).Error("workflow failed")
		}
	}()
	return fn(ctx)
}

func outcomeOf(err error) string {
	if err == nil {
		return observability.OutcomeOK
	}
	if IsPartial(err) {
		return observability.OutcomePartial
	}
	var se *Error
	if errors.As(err, &se) && se.Phase == PhaseValidation {
		return observability.OutcomeRejected
	}
	return observability.OutcomeFailed
}

// inTransaction runs the write phase of a workflow as one unit of work.
func inTransaction(ctx context.Context, tx repository.Transactor, op string, fn func(ctx context.Context) error) error {
	err := tx.WithinTransaction(ctx, fn)
	if err == nil {
		return nil
	}
	return writeFailure(op, err, !tx.Atomic())
}

// checkID rejects non-positive identities.
func checkID(op, name string, id int64) error {
	if id <= 0 {
		return reject(op, KindInvalidArgument, fmt.Errorf("%s: %w", name, ErrInvalidID))
	}
	return nil
}

// checkDate rejects a missing or future session date and returns it in UTC
// at millisecond precision, the finest resolution every store keeps.
func checkDate(op string, date time.Time, now time.Time) (time.Time, error) {
	if date.IsZero() {
		return time.Time{}, reject(op, KindInvalidArgument, ErrDateRequired)
	}
	if date.After(now) {
		return time.Time{}, reject(op, KindInvalidArgument, ErrDateInFuture)
	}
	return date.UTC().Truncate(time.Millisecond), nil
}

func checkDuration(op string, d time.Duration) error {
	if d < 0 {
		return reject(op, KindInvalidArgument, ErrNegativeDuration)
	}
	return nil
}
