package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository" // Import repository package
	"context"
	"errors"
	"strings"
)

// --- Error Definitions ---
var (
	ErrInvalidMetricType = errors.New("unknown metric type")
)

// ExerciseInput carries the editable fields of an exercise.
type ExerciseInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	MuscleGroup string            `json:"muscleGroup"`
	MetricType  domain.MetricType `json:"metricType"`
}

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, userID int64, input ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID int64) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID int64, input ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID int64) error
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

func checkExerciseInput(op string, input ExerciseInput) (ExerciseInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, invalid(op, "exercise name is required")
	}
	if input.MetricType == "" {
		input.MetricType = domain.MetricWeightReps
	}
	if !input.MetricType.IsValid() {
		return input, reject(op, KindInvalidArgument, ErrInvalidMetricType)
	}
	return input, nil
}

// CreateExercise adds an exercise to the shared catalog.
func (s *exerciseService) CreateExercise(ctx context.Context, userID int64, input ExerciseInput) (*domain.Exercise, error) {
	const op = "exercises.create"
	if err := checkID(op, "userId", userID); err != nil {
		return nil, err
	}
	input, err := checkExerciseInput(op, input)
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		CreatedBy:   userID,
		Name:        input.Name,
		Description: input.Description,
		MuscleGroup: input.MuscleGroup,
		MetricType:  input.MetricType,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, writeFailure(op, err, false)
	}
	return exercise, nil
}

// GetExercise retrieves a single exercise. The catalog is readable by every user.
func (s *exerciseService) GetExercise(ctx context.Context, exerciseID int64) (*domain.Exercise, error) {
	const op = "exercises.get"
	if err := checkID(op, "exerciseId", exerciseID); err != nil {
		return nil, err
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, reject("exercises.list", KindUnexpected, err)
	}
	return exercises, nil
}

// ownedExercise loads an exercise and checks the caller created it.
func (s *exerciseService) ownedExercise(ctx context.Context, op string, userID, exerciseID int64) (*domain.Exercise, error) {
	if err := checkID(op, "exerciseId", exerciseID); err != nil {
		return nil, err
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrExerciseNotFound)
	}
	if err := Authorize(exercise, userID, CapabilityOwner); err != nil {
		return nil, reject(op, KindUnauthorized, err)
	}
	return exercise, nil
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
// Changing the metric type does not rewrite metrics already stored.
func (s *exerciseService) UpdateExercise(ctx context.Context, userID, exerciseID int64, input ExerciseInput) (*domain.Exercise, error) {
	const op = "exercises.update"
	input, err := checkExerciseInput(op, input)
	if err != nil {
		return nil, err
	}
	exercise, err := s.ownedExercise(ctx, op, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	exercise.Name = input.Name
	exercise.Description = input.Description
	exercise.MuscleGroup = input.MuscleGroup
	exercise.MetricType = input.MetricType
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, writeFailure(op, err, false)
	}
	return exercise, nil
}

// DeleteExercise handles deleting an exercise, ensuring ownership.
// Exercises still referenced by plans or records cannot be deleted.
func (s *exerciseService) DeleteExercise(ctx context.Context, userID, exerciseID int64) error {
	const op = "exercises.delete"
	if _, err := s.ownedExercise(ctx, op, userID, exerciseID); err != nil {
		return err
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		return writeFailure(op, err, false)
	}
	return nil
}
