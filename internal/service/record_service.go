package service

import (
	"context"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

// RecordUpdate replaces the date, duration and complete composition of a
// workout record.
type RecordUpdate struct {
	Date     time.Time
	Duration time.Duration
	Groups   []domain.ExerciseRecordGroup
}

type WorkoutRecordService interface {
	// CompleteWorkout snapshots the workout's current plan into a new record.
	CompleteWorkout(ctx context.Context, userID, workoutID int64, date time.Time, duration time.Duration) (*domain.WorkoutRecord, error)
	// LogStandaloneWorkoutRecord stores a record whose groups are supplied by the caller.
	LogStandaloneWorkoutRecord(ctx context.Context, userID int64, record *domain.WorkoutRecord) (*domain.WorkoutRecord, error)
	GetWorkoutRecord(ctx context.Context, userID, recordID int64) (*domain.WorkoutRecord, error)
	ListWorkoutRecords(ctx context.Context, userID int64) ([]domain.WorkoutRecord, error)
	UpdateWorkoutRecord(ctx context.Context, userID, recordID int64, update RecordUpdate) (*domain.WorkoutRecord, error)
	DeleteWorkoutRecord(ctx context.Context, userID, recordID int64) error
	// ResyncUser recomputes every aggregate derived from the user's records.
	ResyncUser(ctx context.Context, userID int64) error
}

// workoutRecordService implements the WorkoutRecordService interface.
type workoutRecordService struct {
	tx         repository.Transactor
	users      repository.UserRepository
	workouts   repository.WorkoutRepository
	records    repository.WorkoutRecordRepository
	catalog    exerciseCatalog
	aggregates *AggregateMaintainer
	janitor    photoJanitor
	now        func() time.Time
}

// NewWorkoutRecordService creates a new instance of workoutRecordService.
func NewWorkoutRecordService(deps Dependencies) WorkoutRecordService {
	return &workoutRecordService{
		tx:         deps.Transactor,
		users:      deps.Users,
		workouts:   deps.Workouts,
		records:    deps.Records,
		catalog:    exerciseCatalog{repo: deps.Exercises},
		aggregates: deps.aggregates(),
		janitor:    photoJanitor{photos: deps.Photos, fileStorage: deps.FileStorage},
		now:        deps.clock(),
	}
}

func (s *workoutRecordService) ownedWorkout(ctx context.Context, op string, userID, workoutID int64) (*domain.Workout, error) {
	if err := checkID(op, "workoutId", workoutID); err != nil {
		return nil, err
	}
	workout, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrWorkoutNotFound)
	}
	if err := Authorize(workout, userID, CapabilityOwner); err != nil {
		return nil, reject(op, KindUnauthorized, err)
	}
	return workout, nil
}

func (s *workoutRecordService) ownedRecord(ctx context.Context, op string, userID, recordID int64) (*domain.WorkoutRecord, error) {
	if err := checkID(op, "recordId", recordID); err != nil {
		return nil, err
	}
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrWorkoutRecordNotFound)
	}
	if err := Authorize(record, userID, CapabilityOwner); err != nil {
		return nil, reject(op, KindUnauthorized, err)
	}
	return record, nil
}

// resync runs both aggregate recomputations touched by a record of workoutID.
func (s *workoutRecordService) resync(ctx context.Context, workoutID, userID int64) error {
	if err := s.aggregates.ResyncSessionCount(ctx, workoutID); err != nil {
		return err
	}
	return s.aggregates.ResyncFirstWorkoutDate(ctx, userID)
}

// CompleteWorkout creates a record shell, replicates the plan as it stands at
// this moment into it and resyncs the aggregates, all in one transaction.
func (s *workoutRecordService) CompleteWorkout(ctx context.Context, userID, workoutID int64, date time.Time, duration time.Duration) (*domain.WorkoutRecord, error) {
	const op = "records.completeWorkout"
	var record *domain.WorkoutRecord
	err := runWorkflow(ctx, "complete_workout", func(ctx context.Context) error {
		date, err := checkDate(op, date, s.now())
		if err != nil {
			return err
		}
		if err := checkDuration(op, duration); err != nil {
			return err
		}
		if _, err := s.ownedWorkout(ctx, op, userID, workoutID); err != nil {
			return err
		}

		return inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			r := &domain.WorkoutRecord{
				UserID:    userID,
				WorkoutID: workoutID,
				Date:      date,
				Duration:  duration,
			}
			if _, err := s.records.Create(ctx, r); err != nil {
				return err
			}
			plan, err := s.workouts.GetGroups(ctx, workoutID)
			if err != nil {
				return err
			}
			groups, err := persistRecordGroups(ctx, s.records, r.ID, date, ReplicatePlan(plan, r.ID, date))
			if err != nil {
				return err
			}
			r.Groups = groups
			if err := s.resync(ctx, workoutID, userID); err != nil {
				return err
			}
			record = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LogStandaloneWorkoutRecord persists a caller-built record subtree. The
// caller's ids, user id and children references are ignored; every record
// inherits the record date and its group's exercise.
func (s *workoutRecordService) LogStandaloneWorkoutRecord(ctx context.Context, userID int64, input *domain.WorkoutRecord) (*domain.WorkoutRecord, error) {
	const op = "records.logStandalone"
	var record *domain.WorkoutRecord
	err := runWorkflow(ctx, "log_standalone_record", func(ctx context.Context) error {
		if input == nil {
			return invalid(op, "workout record is required")
		}
		date, err := checkDate(op, input.Date, s.now())
		if err != nil {
			return err
		}
		if err := checkDuration(op, input.Duration); err != nil {
			return err
		}
		if _, err := s.ownedWorkout(ctx, op, userID, input.WorkoutID); err != nil {
			return err
		}
		groups, err := s.catalog.normalizeRecord(ctx, op, input.Groups)
		if err != nil {
			return err
		}

		return inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			r := &domain.WorkoutRecord{
				UserID:    userID,
				WorkoutID: input.WorkoutID,
				Date:      date,
				Duration:  input.Duration,
			}
			if _, err := s.records.Create(ctx, r); err != nil {
				return err
			}
			persisted, err := persistRecordGroups(ctx, s.records, r.ID, date, groups)
			if err != nil {
				return err
			}
			r.Groups = persisted
			if err := s.resync(ctx, r.WorkoutID, userID); err != nil {
				return err
			}
			record = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *workoutRecordService) GetWorkoutRecord(ctx context.Context, userID, recordID int64) (*domain.WorkoutRecord, error) {
	const op = "records.get"
	if _, err := s.ownedRecord(ctx, op, userID, recordID); err != nil {
		return nil, err
	}
	record, err := s.records.GetWithGroups(ctx, recordID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrWorkoutRecordNotFound)
	}
	return record, nil
}

func (s *workoutRecordService) ListWorkoutRecords(ctx context.Context, userID int64) ([]domain.WorkoutRecord, error) {
	const op = "records.list"
	if err := checkID(op, "userId", userID); err != nil {
		return nil, err
	}
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, reject(op, KindUnexpected, err)
	}
	return records, nil
}

// UpdateWorkoutRecord overwrites date and duration and replaces all record
// groups with update.Groups, the same full-replace used for plans.
func (s *workoutRecordService) UpdateWorkoutRecord(ctx context.Context, userID, recordID int64, update RecordUpdate) (*domain.WorkoutRecord, error) {
	const op = "records.update"
	var record *domain.WorkoutRecord
	err := runWorkflow(ctx, "update_record", func(ctx context.Context) error {
		date, err := checkDate(op, update.Date, s.now())
		if err != nil {
			return err
		}
		if err := checkDuration(op, update.Duration); err != nil {
			return err
		}
		r, err := s.ownedRecord(ctx, op, userID, recordID)
		if err != nil {
			return err
		}
		groups, err := s.catalog.normalizeRecord(ctx, op, update.Groups)
		if err != nil {
			return err
		}

		return inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			r.Date = date
			r.Duration = update.Duration
			if err := s.records.Update(ctx, r); err != nil {
				return err
			}
			existing, err := s.records.GetGroups(ctx, recordID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				if err := s.records.DeleteGroups(ctx, recordGroupIDs(existing)); err != nil {
					return err
				}
			}
			persisted, err := persistRecordGroups(ctx, s.records, recordID, date, groups)
			if err != nil {
				return err
			}
			r.Groups = persisted
			if err := s.resync(ctx, r.WorkoutID, r.UserID); err != nil {
				return err
			}
			record = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteWorkoutRecord removes the record with its subtree and photos, then
// resyncs both aggregates.
func (s *workoutRecordService) DeleteWorkoutRecord(ctx context.Context, userID, recordID int64) error {
	const op = "records.delete"
	return runWorkflow(ctx, "delete_record", func(ctx context.Context) error {
		r, err := s.ownedRecord(ctx, op, userID, recordID)
		if err != nil {
			return err
		}

		var detached []domain.ProgressPhoto
		err = inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			photos, err := s.janitor.detach(ctx, recordID)
			if err != nil {
				return err
			}
			detached = photos
			if err := s.records.Delete(ctx, recordID); err != nil {
				return err
			}
			return s.resync(ctx, r.WorkoutID, r.UserID)
		})
		if err != nil {
			return err
		}
		s.janitor.purge(ctx, detached)
		return nil
	})
}

// ResyncUser recomputes the session count of every workout of the user and
// the user's first workout date.
func (s *workoutRecordService) ResyncUser(ctx context.Context, userID int64) error {
	const op = "records.resyncUser"
	return runWorkflow(ctx, "resync_user", func(ctx context.Context) error {
		if err := checkID(op, "userId", userID); err != nil {
			return err
		}
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return lookupFailure(op, err, ErrUserNotFound)
		}
		if err := Authorize(user, 0, CapabilityInternal); err != nil {
			return reject(op, KindUnauthorized, err)
		}

		return inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			workouts, err := s.workouts.ListByUser(ctx, userID)
			if err != nil {
				return err
			}
			for _, w := range workouts {
				if err := s.aggregates.ResyncSessionCount(ctx, w.ID); err != nil {
					return err
				}
			}
			return s.aggregates.ResyncFirstWorkoutDate(ctx, userID)
		})
	})
}
