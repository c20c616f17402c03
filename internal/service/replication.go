package service

import (
	"context"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
)

// ReplicatePlan turns the plan groups of a workout into the record subtree of
// a completed session. Groups and sets keep their order and exercise ids; each
// record is stamped with date. Ids are left zero for the store to assign. The
// plan is not modified.
func ReplicatePlan(planGroups []domain.ExerciseSetGroup, recordID int64, date time.Time) []domain.ExerciseRecordGroup {
	out := make([]domain.ExerciseRecordGroup, len(planGroups))
	for i, g := range planGroups {
		records := make([]domain.ExerciseRecord, len(g.Sets))
		for j, set := range g.Sets {
			records[j] = domain.ExerciseRecord{
				WorkoutRecordID: recordID,
				ExerciseID:      set.ExerciseID,
				Date:            date,
				Position:        j,
				Metrics:         set.Metrics.Clone(),
			}
		}
		out[i] = domain.ExerciseRecordGroup{
			WorkoutRecordID: recordID,
			ExerciseID:      g.ExerciseID,
			Position:        i,
			Records:         records,
		}
	}
	return out
}

// persistRecordGroups inserts groups under recordID, group first, then its
// records. Caller-supplied ids and children references are ignored; every
// record gets date, its group's id and its group's exercise id. The returned
// slice carries the assigned ids.
func persistRecordGroups(ctx context.Context, repo repository.WorkoutRecordRepository, recordID int64, date time.Time, groups []domain.ExerciseRecordGroup) ([]domain.ExerciseRecordGroup, error) {
	out := make([]domain.ExerciseRecordGroup, 0, len(groups))
	for i, g := range groups {
		records := g.Records

		group := domain.ExerciseRecordGroup{
			WorkoutRecordID: recordID,
			ExerciseID:      g.ExerciseID,
			Position:        i,
		}
		if _, err := repo.CreateGroup(ctx, &group); err != nil {
			return nil, err
		}

		group.Records = make([]domain.ExerciseRecord, 0, len(records))
		for j, r := range records {
			record := domain.ExerciseRecord{
				GroupID:         group.ID,
				WorkoutRecordID: recordID,
				ExerciseID:      group.ExerciseID,
				Date:            date,
				Position:        j,
				Metrics:         r.Metrics.Clone(),
			}
			if _, err := repo.CreateRecord(ctx, &record); err != nil {
				return nil, err
			}
			group.Records = append(group.Records, record)
		}
		out = append(out, group)
	}
	return out, nil
}

// persistPlanGroups is the plan-side counterpart of persistRecordGroups.
func persistPlanGroups(ctx context.Context, repo repository.WorkoutRepository, workoutID int64, groups []domain.ExerciseSetGroup) ([]domain.ExerciseSetGroup, error) {
	out := make([]domain.ExerciseSetGroup, 0, len(groups))
	for i, g := range groups {
		sets := g.Sets

		group := domain.ExerciseSetGroup{
			WorkoutID:  workoutID,
			ExerciseID: g.ExerciseID,
			Position:   i,
		}
		if _, err := repo.CreateGroup(ctx, &group); err != nil {
			return nil, err
		}

		group.Sets = make([]domain.ExerciseSet, 0, len(sets))
		for j, s := range sets {
			set := domain.ExerciseSet{
				GroupID:    group.ID,
				WorkoutID:  workoutID,
				ExerciseID: group.ExerciseID,
				Position:   j,
				Metrics:    s.Metrics.Clone(),
			}
			if _, err := repo.CreateSet(ctx, &set); err != nil {
				return nil, err
			}
			group.Sets = append(group.Sets, set)
		}
		out = append(out, group)
	}
	return out, nil
}

func setGroupIDs(groups []domain.ExerciseSetGroup) []int64 {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}

func recordGroupIDs(groups []domain.ExerciseRecordGroup) []int64 {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}
