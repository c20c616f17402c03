package service

import (
	"errors"
	"fmt"

	"alcyxob/fitness-tracker/internal/repository"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound       = errors.New("workout not found")
	ErrWorkoutRecordNotFound = errors.New("workout record not found")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrAccessDenied          = errors.New("access denied")
	ErrInvalidID             = errors.New("id must be positive")
	ErrDateRequired          = errors.New("date is required")
	ErrDateInFuture          = errors.New("date must not be in the future")
	ErrNegativeDuration      = errors.New("duration must not be negative")
	ErrNegativeMetric        = errors.New("metric values must not be negative")
	ErrValidationFailed      = errors.New("validation failed")
)

// Kind classifies a service failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidArgument
	KindInvalidReference
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidReference:
		return "invalid_reference"
	default:
		return "unexpected"
	}
}

// Phase tells whether a failure happened before or during the write phase.
type Phase int

const (
	PhaseValidation Phase = iota // nothing was written
	PhaseWrite
)

// Error is returned by every workflow. A failure in PhaseValidation left the
// stores untouched. A PhaseWrite failure was rolled back unless Partial is set,
// in which case some writes may have been persisted and a blind retry is unsafe.
type Error struct {
	Op      string
	Kind    Kind
	Phase   Phase
	Partial bool
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Partial {
		msg += " (partially applied)"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Bare repository errors are classified too.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnexpected
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return classify(err)
}

// IsPartial reports whether err came from a write phase that could not be rolled back.
func IsPartial(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Partial
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, ErrWorkoutNotFound),
		errors.Is(err, ErrWorkoutRecordNotFound),
		errors.Is(err, ErrExerciseNotFound),
		errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrInvalidReference), errors.Is(err, repository.ErrInUse):
		return KindInvalidReference
	case errors.Is(err, ErrAccessDenied):
		return KindUnauthorized
	default:
		return KindUnexpected
	}
}

// reject builds a validation-phase failure.
func reject(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Phase: PhaseValidation, Err: err}
}

// invalid is a shorthand for an InvalidArgument rejection.
func invalid(op string, format string, args ...any) error {
	return reject(op, KindInvalidArgument, fmt.Errorf("%w: "+format, append([]any{ErrValidationFailed}, args...)...))
}

// lookupFailure turns an error from a pre-write read into a rejection,
// replacing repository.ErrNotFound with the given domain sentinel.
func lookupFailure(op string, err error, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return reject(op, KindNotFound, notFound)
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return reject(op, KindUnexpected, err)
}

// writeFailure marks err as a write-phase failure.
func writeFailure(op string, err error, partial bool) error {
	var se *Error
	if errors.As(err, &se) {
		cp := *se
		cp.Phase = PhaseWrite
		cp.Partial = partial
		return &cp
	}
	return &Error{Op: op, Kind: classify(err), Phase: PhaseWrite, Partial: partial, Err: err}
}
