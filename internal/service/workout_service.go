package service

import (
	"context"
	"strings"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

// WorkoutDetails are the plan fields editable without touching its composition.
type WorkoutDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pinned      bool   `json:"pinned"`
}

type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID int64, details WorkoutDetails, groups []domain.ExerciseSetGroup) (*domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID int64) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, userID int64) ([]domain.Workout, error)
	UpdateWorkoutDetails(ctx context.Context, userID, workoutID int64, details WorkoutDetails) (*domain.Workout, error)
	// UpdateWorkoutComposition replaces the whole composition of a workout.
	// Callers always submit the complete desired list of groups; an empty
	// list clears the plan.
	UpdateWorkoutComposition(ctx context.Context, userID, workoutID int64, groups []domain.ExerciseSetGroup) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID int64) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	tx         repository.Transactor
	workouts   repository.WorkoutRepository
	records    repository.WorkoutRecordRepository
	catalog    exerciseCatalog
	aggregates *AggregateMaintainer
	janitor    photoJanitor
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(deps Dependencies) WorkoutService {
	return &workoutService{
		tx:         deps.Transactor,
		workouts:   deps.Workouts,
		records:    deps.Records,
		catalog:    exerciseCatalog{repo: deps.Exercises},
		aggregates: deps.aggregates(),
		janitor:    photoJanitor{photos: deps.Photos, fileStorage: deps.FileStorage},
	}
}

func checkDetails(op string, details WorkoutDetails) (WorkoutDetails, error) {
	details.Name = strings.TrimSpace(details.Name)
	if details.Name == "" {
		return details, invalid(op, "workout name is required")
	}
	return details, nil
}

// ownedWorkout loads a workout and checks the caller owns it.
func (s *workoutService) ownedWorkout(ctx context.Context, op string, userID, workoutID int64) (*domain.Workout, error) {
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

// CreateWorkout stores a new plan together with its initial composition.
func (s *workoutService) CreateWorkout(ctx context.Context, userID int64, details WorkoutDetails, groups []domain.ExerciseSetGroup) (*domain.Workout, error) {
	const op = "workouts.create"
	var workout *domain.Workout
	err := runWorkflow(ctx, "create_workout", func(ctx context.Context) error {
		if err := checkID(op, "userId", userID); err != nil {
			return err
		}
		details, err := checkDetails(op, details)
		if err != nil {
			return err
		}
		groups, err := s.catalog.normalizePlan(ctx, op, groups)
		if err != nil {
			return err
		}

		w := &domain.Workout{
			UserID:      userID,
			Name:        details.Name,
			Description: details.Description,
			Pinned:      details.Pinned,
		}
		return inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			if _, err := s.workouts.Create(ctx, w); err != nil {
				return err
			}
			persisted, err := persistPlanGroups(ctx, s.workouts, w.ID, groups)
			if err != nil {
				return err
			}
			w.Groups = persisted
			workout = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID int64) (*domain.Workout, error) {
	const op = "workouts.get"
	if _, err := s.ownedWorkout(ctx, op, userID, workoutID); err != nil {
		return nil, err
	}
	workout, err := s.workouts.GetWithGroups(ctx, workoutID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrWorkoutNotFound)
	}
	return workout, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, userID int64) ([]domain.Workout, error) {
	const op = "workouts.list"
	if err := checkID(op, "userId", userID); err != nil {
		return nil, err
	}
	workouts, err := s.workouts.ListByUser(ctx, userID)
	if err != nil {
		return nil, reject(op, KindUnexpected, err)
	}
	return workouts, nil
}

func (s *workoutService) UpdateWorkoutDetails(ctx context.Context, userID, workoutID int64, details WorkoutDetails) (*domain.Workout, error) {
	const op = "workouts.updateDetails"
	var workout *domain.Workout
	err := runWorkflow(ctx, "update_workout_details", func(ctx context.Context) error {
		details, err := checkDetails(op, details)
		if err != nil {
			return err
		}
		w, err := s.ownedWorkout(ctx, op, userID, workoutID)
		if err != nil {
			return err
		}
		w.Name = details.Name
		w.Description = details.Description
		w.Pinned = details.Pinned
		if err := s.workouts.Update(ctx, w); err != nil {
			return writeFailure(op, err, false)
		}
		workout = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

// UpdateWorkoutComposition deletes every existing group of the workout in one
// batch, cascading to their sets, then inserts groups as new rows.
func (s *workoutService) UpdateWorkoutComposition(ctx context.Context, userID, workoutID int64, groups []domain.ExerciseSetGroup) (*domain.Workout, error) {
	const op = "workouts.updateComposition"
	var workout *domain.Workout
	err := runWorkflow(ctx, "update_workout_composition", func(ctx context.Context) error {
		w, err := s.ownedWorkout(ctx, op, userID, workoutID)
		if err != nil {
			return err
		}
		groups, err := s.catalog.normalizePlan(ctx, op, groups)
		if err != nil {
			return err
		}

		return inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			existing, err := s.workouts.GetGroups(ctx, workoutID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				if err := s.workouts.DeleteGroups(ctx, setGroupIDs(existing)); err != nil {
					return err
				}
			}
			persisted, err := persistPlanGroups(ctx, s.workouts, workoutID, groups)
			if err != nil {
				return err
			}
			w.Groups = persisted
			workout = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

// DeleteWorkout removes the plan and every record completed from it. The
// records' photo objects are removed after the transaction commits.
func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID int64) error {
	const op = "workouts.delete"
	return runWorkflow(ctx, "delete_workout", func(ctx context.Context) error {
		w, err := s.ownedWorkout(ctx, op, userID, workoutID)
		if err != nil {
			return err
		}

		var detached []domain.ProgressPhoto
		err = inTransaction(ctx, s.tx, op, func(ctx context.Context) error {
			detached = nil
			records, err := s.records.ListByWorkout(ctx, workoutID)
			if err != nil {
				return err
			}
			for _, r := range records {
				photos, err := s.janitor.detach(ctx, r.ID)
				if err != nil {
					return err
				}
				detached = append(detached, photos...)
			}
			if _, err := s.records.DeleteByWorkout(ctx, workoutID); err != nil {
				return err
			}
			if err := s.workouts.Delete(ctx, workoutID); err != nil {
				return err
			}
			return s.aggregates.ResyncFirstWorkoutDate(ctx, w.UserID)
		})
		if err != nil {
			return err
		}
		s.janitor.purge(ctx, detached)
		return nil
	})
}
