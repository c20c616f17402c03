package domain

import (
	"time"
)

// Workout is a user-authored plan: an ordered list of exercise set groups.
type Workout struct {
	ID          int64     `bson:"_id" json:"id"`
	UserID      int64     `bson:"userId" json:"userId"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Pinned      bool      `bson:"pinned" json:"pinned"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`

	// CompletedSessionCount mirrors the number of workout records referencing
	// this workout. Only the aggregate maintainer writes it.
	CompletedSessionCount int `bson:"completedSessionCount" json:"completedSessionCount"`

	// Groups live in their own collection/table and are only populated by
	// the "with groups" fetches.
	Groups []ExerciseSetGroup `bson:"-" json:"groups,omitempty"`
}

func (w *Workout) OwnerID() int64 {
	return w.UserID
}

// ExerciseSetGroup groups the target sets of one exercise inside a workout.
type ExerciseSetGroup struct {
	ID         int64         `bson:"_id" json:"id"`
	WorkoutID  int64         `bson:"workoutId" json:"workoutId"`
	ExerciseID int64         `bson:"exerciseId" json:"exerciseId"`
	Position   int           `bson:"position" json:"position"`
	Sets       []ExerciseSet `bson:"-" json:"sets"`
}

// ExerciseSet is a target, not a historical fact, so it carries no date.
type ExerciseSet struct {
	ID         int64 `bson:"_id" json:"id"`
	GroupID    int64 `bson:"groupId" json:"groupId"`
	WorkoutID  int64 `bson:"workoutId" json:"workoutId"` // denormalized for cascading deletes
	ExerciseID int64 `bson:"exerciseId" json:"exerciseId"`
	Position   int   `bson:"position" json:"position"`

	Metrics `bson:",inline"`
}
