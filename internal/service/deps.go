package service

import (
	"time"

	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/storage"
)

// Dependencies bundles the stores shared by the workout and record services.
type Dependencies struct {
	Transactor repository.Transactor
	Users      repository.UserRepository
	Exercises  repository.ExerciseRepository
	Workouts   repository.WorkoutRepository
	Records    repository.WorkoutRecordRepository
	Photos     repository.PhotoRepository

	// FileStorage holds photo objects; nil skips object removal on deletes.
	FileStorage storage.FileStorage
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Dependencies) aggregates() *AggregateMaintainer {
	return NewAggregateMaintainer(d.Workouts, d.Records, d.Users)
}

func (d Dependencies) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}
