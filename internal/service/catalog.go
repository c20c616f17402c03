package service

import (
	"context"
	"fmt"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

// exerciseCatalog validates the exercise references and metrics of a
// submitted composition before anything is written.
type exerciseCatalog struct {
	repo repository.ExerciseRepository
}

func (c exerciseCatalog) lookup(ctx context.Context, op string, ids []int64) (map[int64]domain.Exercise, error) {
	for _, id := range ids {
		if err := checkID(op, "exerciseId", id); err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return map[int64]domain.Exercise{}, nil
	}
	found, err := c.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, reject(op, KindUnexpected, err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, reject(op, KindNotFound, fmt.Errorf("%w: %d", ErrExerciseNotFound, id))
		}
	}
	return found, nil
}

func normalizeMetrics(op string, ex domain.Exercise, m domain.Metrics) (domain.Metrics, error) {
	if m.IsNegative() {
		return domain.Metrics{}, reject(op, KindInvalidArgument, fmt.Errorf("%w: exercise %d", ErrNegativeMetric, ex.ID))
	}
	return m.Normalize(ex.MetricType), nil
}

// normalizePlan returns a validated copy of groups with metrics normalized
// to each exercise's metric type. Sets always take their group's exercise.
func (c exerciseCatalog) normalizePlan(ctx context.Context, op string, groups []domain.ExerciseSetGroup) ([]domain.ExerciseSetGroup, error) {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ExerciseID
	}
	exercises, err := c.lookup(ctx, op, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ExerciseSetGroup, len(groups))
	for i, g := range groups {
		ex := exercises[g.ExerciseID]
		sets := make([]domain.ExerciseSet, len(g.Sets))
		for j, s := range g.Sets {
			m, err := normalizeMetrics(op, ex, s.Metrics)
			if err != nil {
				return nil, err
			}
			sets[j] = domain.ExerciseSet{ExerciseID: ex.ID, Position: j, Metrics: m}
		}
		out[i] = domain.ExerciseSetGroup{ExerciseID: ex.ID, Position: i, Sets: sets}
	}
	return out, nil
}

// normalizeRecord is normalizePlan for logged record groups.
func (c exerciseCatalog) normalizeRecord(ctx context.Context, op string, groups []domain.ExerciseRecordGroup) ([]domain.ExerciseRecordGroup, error) {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ExerciseID
	}
	exercises, err := c.lookup(ctx, op, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ExerciseRecordGroup, len(groups))
	for i, g := range groups {
		ex := exercises[g.ExerciseID]
		records := make([]domain.ExerciseRecord, len(g.Records))
		for j, r := range g.Records {
			m, err := normalizeMetrics(op, ex, r.Metrics)
			if err != nil {
				return nil, err
			}
			records[j] = domain.ExerciseRecord{ExerciseID: ex.ID, Position: j, Metrics: m}
		}
		out[i] = domain.ExerciseRecordGroup{ExerciseID: ex.ID, Position: i, Records: records}
	}
	return out, nil
}
