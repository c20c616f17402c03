package domain

import (
	"time"
)

// WorkoutRecord is the historical snapshot of one completed or logged session.
type WorkoutRecord struct {
	ID        int64         `bson:"_id" json:"id"`
	UserID    int64         `bson:"userId" json:"userId"`
	WorkoutID int64         `bson:"workoutId" json:"workoutId"` // immutable once created
	Date      time.Time     `bson:"date" json:"date"`
	Duration  time.Duration `bson:"duration" json:"duration"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`

	Groups []ExerciseRecordGroup `bson:"-" json:"groups,omitempty"`
}

func (r *WorkoutRecord) OwnerID() int64 {
	return r.UserID
}

// ExerciseRecordGroup is the historical mirror of an ExerciseSetGroup.
type ExerciseRecordGroup struct {
	ID              int64            `bson:"_id" json:"id"`
	WorkoutRecordID int64            `bson:"workoutRecordId" json:"workoutRecordId"`
	ExerciseID      int64            `bson:"exerciseId" json:"exerciseId"`
	Position        int              `bson:"position" json:"position"`
	Records         []ExerciseRecord `bson:"-" json:"records"`
}

// ExerciseRecord is what was actually performed for one set.
type ExerciseRecord struct {
	ID              int64     `bson:"_id" json:"id"`
	GroupID         int64     `bson:"groupId" json:"groupId"`
	WorkoutRecordID int64     `bson:"workoutRecordId" json:"workoutRecordId"` // denormalized for cascading deletes
	ExerciseID      int64     `bson:"exerciseId" json:"exerciseId"`
	Date            time.Time `bson:"date" json:"date"` // always the owning record's date
	Position        int       `bson:"position" json:"position"`

	Metrics `bson:",inline"`
}
