// internal/domain/exercise.go
package domain

import (
	"time"
)

// MetricType tells which of weight, reps and duration are meaningful for an exercise.
type MetricType string

const (
	MetricWeightReps     MetricType = "weight_reps"
	MetricReps           MetricType = "reps"
	MetricDuration       MetricType = "duration"
	MetricWeightDuration MetricType = "weight_duration"
)

func (mt MetricType) IsValid() bool {
	switch mt {
	case MetricWeightReps, MetricReps, MetricDuration, MetricWeightDuration:
		return true
	default:
		return false
	}
}

func (mt MetricType) UsesWeight() bool {
	return mt == MetricWeightReps || mt == MetricWeightDuration
}

func (mt MetricType) UsesReps() bool {
	return mt == MetricWeightReps || mt == MetricReps
}

func (mt MetricType) UsesDuration() bool {
	return mt == MetricDuration || mt == MetricWeightDuration
}

// Exercise represents a single exercise definition in the shared catalog.
type Exercise struct {
	ID          int64      `bson:"_id" json:"id"`
	CreatedBy   int64      `bson:"createdBy" json:"createdBy"` // Only the creator may edit or delete
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	MuscleGroup string     `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs", "Back"
	MetricType  MetricType `bson:"metricType" json:"metricType"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (e *Exercise) OwnerID() int64 {
	return e.CreatedBy
}
