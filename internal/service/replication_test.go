package service_test

import (
	"testing"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicatePlan_Structure(t *testing.T) {
	date := day(2024, 1, 5)
	shapes := map[string][]int{
		"empty plan":        {},
		"group without set": {0},
		"single group":      {3},
		"mixed":             {2, 0, 4, 1},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			plan := make([]domain.ExerciseSetGroup, len(shape))
			for i, n := range shape {
				exerciseID := int64(100 + i)
				plan[i] = domain.ExerciseSetGroup{ID: int64(i + 1), WorkoutID: 9, ExerciseID: exerciseID, Position: i}
				for j := 0; j < n; j++ {
					plan[i].Sets = append(plan[i].Sets, domain.ExerciseSet{
						ID: int64(j + 1), ExerciseID: exerciseID, Position: j, Metrics: reps(j + 1),
					})
				}
			}

			out := service.ReplicatePlan(plan, 42, date)

			require.Len(t, out, len(shape))
			for i, g := range out {
				assert.Equal(t, plan[i].ExerciseID, g.ExerciseID)
				assert.Equal(t, int64(42), g.WorkoutRecordID)
				assert.Equal(t, i, g.Position)
				assert.Zero(t, g.ID)
				require.Len(t, g.Records, shape[i])
				for j, r := range g.Records {
					assert.Equal(t, plan[i].ExerciseID, r.ExerciseID)
					assert.True(t, date.Equal(r.Date))
					assert.Equal(t, j+1, *r.Reps)
					assert.Equal(t, j, r.Position)
				}
			}
		})
	}
}

func TestReplicatePlan_LeavesPlanUntouched(t *testing.T) {
	plan := []domain.ExerciseSetGroup{{
		ID: 1, ExerciseID: 7,
		Sets: []domain.ExerciseSet{{ID: 1, ExerciseID: 7, Metrics: domain.Metrics{Weight: floatPtr(60), Reps: intPtr(5)}}},
	}}

	out := service.ReplicatePlan(plan, 1, day(2024, 1, 5))
	*out[0].Records[0].Reps = 99
	*out[0].Records[0].Weight = 1

	assert.Equal(t, 5, *plan[0].Sets[0].Reps)
	assert.Equal(t, 60.0, *plan[0].Sets[0].Weight)
	assert.Equal(t, int64(1), plan[0].ID)
}

func TestAuthorize(t *testing.T) {
	w := &domain.Workout{ID: 1, UserID: 5}

	assert.NoError(t, service.Authorize(w, 5, service.CapabilityOwner))
	assert.ErrorIs(t, service.Authorize(w, 6, service.CapabilityOwner), service.ErrAccessDenied)
	assert.ErrorIs(t, service.Authorize(w, 0, service.CapabilityOwner), service.ErrAccessDenied)
	assert.NoError(t, service.Authorize(w, 0, service.CapabilityInternal))
	assert.NoError(t, service.Authorize(&domain.WorkoutRecord{UserID: 5}, 5, service.CapabilityOwner))
}
