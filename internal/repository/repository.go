package repository

import (
	"alcyxob/fitness-tracker/internal/domain" // Import our defined domain models
	"context"                                 // Standard for request-scoped deadlines, cancellation signals, etc.
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound         = RepositoryError("not found")
	ErrInvalidReference = RepositoryError("invalid parent reference")
	ErrDuplicate        = RepositoryError("duplicate entry")
	ErrInUse            = RepositoryError("still referenced")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs a unit of work. Repositories called with the ctx handed to
// fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether a failed fn leaves no trace behind.
	Atomic() bool
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// SetFirstWorkoutDate overwrites the denormalized first workout date; nil clears it.
	SetFirstWorkoutDate(ctx context.Context, userID int64, date *time.Time) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Exercise, error)
	// GetByIDs returns the exercises found; missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	// Delete fails with ErrInUse while any plan or record group references the exercise.
	Delete(ctx context.Context, id int64) error
}

// WorkoutRepository is the plan store: workouts and their set groups/sets.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Workout, error)
	GetWithGroups(ctx context.Context, id int64) (*domain.Workout, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	SetCompletedSessionCount(ctx context.Context, workoutID int64, count int) error
	// Delete removes the workout together with its groups and sets.
	Delete(ctx context.Context, id int64) error

	CreateGroup(ctx context.Context, group *domain.ExerciseSetGroup) (int64, error)
	CreateSet(ctx context.Context, set *domain.ExerciseSet) (int64, error)
	// GetGroups returns the groups of a workout ordered by position, sets included.
	GetGroups(ctx context.Context, workoutID int64) ([]domain.ExerciseSetGroup, error)
	// DeleteGroups removes the given groups and their sets in one batch.
	DeleteGroups(ctx context.Context, groupIDs []int64) error
}

// WorkoutRecordRepository is the record store: workout records and their record groups/records.
type WorkoutRecordRepository interface {
	Create(ctx context.Context, record *domain.WorkoutRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.WorkoutRecord, error)
	GetWithGroups(ctx context.Context, id int64) (*domain.WorkoutRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.WorkoutRecord, error) // newest first
	ListByWorkout(ctx context.Context, workoutID int64) ([]domain.WorkoutRecord, error)
	// Update overwrites date and duration and restamps the date of every
	// exercise record; the workout linkage is immutable.
	Update(ctx context.Context, record *domain.WorkoutRecord) error
	Delete(ctx context.Context, id int64) error
	DeleteByWorkout(ctx context.Context, workoutID int64) (int64, error)

	CreateGroup(ctx context.Context, group *domain.ExerciseRecordGroup) (int64, error)
	CreateRecord(ctx context.Context, record *domain.ExerciseRecord) (int64, error)
	GetGroups(ctx context.Context, workoutRecordID int64) ([]domain.ExerciseRecordGroup, error)
	DeleteGroups(ctx context.Context, groupIDs []int64) error

	CountByWorkout(ctx context.Context, workoutID int64) (int, error)
	// FirstDateByUser returns the minimum record date of the user, or nil if there are none.
	FirstDateByUser(ctx context.Context, userID int64) (*time.Time, error)
}

// PhotoRepository defines the interface for interacting with progress photo metadata.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error)
	ListByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error)
	// DeleteByRecord removes the metadata and returns what was removed so the
	// caller can clean up object storage.
	DeleteByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error)
}
