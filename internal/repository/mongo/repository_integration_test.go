//go:build integration

package mongo

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestClient starts a single-node replica set, which session transactions require.
func newTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	ctx := context.Background()

	ctr, err := mongocontainer.Run(ctx, "mongo:7", mongocontainer.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	// the member is announced under the container hostname; talk to it directly
	u, err := url.Parse(uri)
	require.NoError(t, err)
	q := u.Query()
	q.Del("replicaSet")
	q.Set("directConnection", "true")
	u.RawQuery = q.Encode()

	client, err := ConnectDB(u.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = DisconnectDB(client) })
	return client
}

func intPtr(v int) *int { return &v }

func TestMongoRepositories(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	db := client.Database("fitness")

	require.NoError(t, EnsureIndexes(ctx, db))
	// EnsureIndexes is idempotent
	require.NoError(t, EnsureIndexes(ctx, db))

	users := NewMongoUserRepository(db)
	exercises := NewMongoExerciseRepository(db)
	workouts := NewMongoWorkoutRepository(db)
	records := NewMongoWorkoutRecordRepository(db)
	photos := NewMongoPhotoRepository(db)
	tx := NewTransactor(client, true)
	assert.True(t, tx.Atomic())

	user := &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x", Role: domain.RoleUser}
	_, err := users.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID, "ids come from the counters collection")
	_, err = users.Create(ctx, &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x", Role: domain.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	bob := &domain.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: domain.RoleUser}
	_, err = users.Create(ctx, bob)
	require.NoError(t, err)
	assert.Greater(t, bob.ID, user.ID)

	got, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.FirstWorkoutDate)

	squat := &domain.Exercise{CreatedBy: user.ID, Name: "Squat", MetricType: domain.MetricWeightReps}
	_, err = exercises.Create(ctx, squat)
	require.NoError(t, err)
	lunge := &domain.Exercise{CreatedBy: user.ID, Name: "Lunge", MetricType: domain.MetricReps}
	_, err = exercises.Create(ctx, lunge)
	require.NoError(t, err)

	workout := &domain.Workout{UserID: user.ID, Name: "Legs"}
	_, err = workouts.Create(ctx, workout)
	require.NoError(t, err)

	// inserted out of order; GetGroups sorts by position
	second := &domain.ExerciseSetGroup{WorkoutID: workout.ID, ExerciseID: lunge.ID, Position: 1}
	_, err = workouts.CreateGroup(ctx, second)
	require.NoError(t, err)
	first := &domain.ExerciseSetGroup{WorkoutID: workout.ID, ExerciseID: squat.ID, Position: 0}
	_, err = workouts.CreateGroup(ctx, first)
	require.NoError(t, err)
	for i, reps := range []int{8, 5} {
		set := &domain.ExerciseSet{GroupID: first.ID, ExerciseID: squat.ID, Position: 1 - i, Metrics: domain.Metrics{Reps: intPtr(reps)}}
		_, err := workouts.CreateSet(ctx, set)
		require.NoError(t, err)
		assert.Equal(t, workout.ID, set.WorkoutID)
	}
	lungeSet := &domain.ExerciseSet{GroupID: second.ID, ExerciseID: lunge.ID, Metrics: domain.Metrics{Reps: intPtr(12)}}
	_, err = workouts.CreateSet(ctx, lungeSet)
	require.NoError(t, err)

	_, err = workouts.CreateSet(ctx, &domain.ExerciseSet{GroupID: second.ID + 100, ExerciseID: squat.ID})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	_, err = workouts.CreateSet(ctx, &domain.ExerciseSet{GroupID: 0, ExerciseID: squat.ID})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	_, err = workouts.CreateGroup(ctx, &domain.ExerciseSetGroup{WorkoutID: workout.ID + 100, ExerciseID: squat.ID})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	_, err = records.Create(ctx, &domain.WorkoutRecord{UserID: user.ID, WorkoutID: workout.ID + 100, Date: time.Now()})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)

	groups, err := workouts.GetGroups(ctx, workout.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, squat.ID, groups[0].ExerciseID)
	assert.Equal(t, lunge.ID, groups[1].ExerciseID)
	require.Len(t, groups[0].Sets, 2)
	assert.Equal(t, 5, *groups[0].Sets[0].Reps)
	assert.Equal(t, 8, *groups[0].Sets[1].Reps)
	require.Len(t, groups[1].Sets, 1)
	assert.Equal(t, 12, *groups[1].Sets[0].Reps)

	assert.ErrorIs(t, exercises.Delete(ctx, squat.ID), repository.ErrInUse)

	early := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
	var recordIDs []int64
	for _, date := range []time.Time{late, early} {
		record := &domain.WorkoutRecord{UserID: user.ID, WorkoutID: workout.ID, Date: date, Duration: 45 * time.Minute}
		_, err := records.Create(ctx, record)
		require.NoError(t, err)
		recordIDs = append(recordIDs, record.ID)

		for gi, g := range groups {
			rg := &domain.ExerciseRecordGroup{WorkoutRecordID: record.ID, ExerciseID: g.ExerciseID, Position: gi}
			_, err := records.CreateGroup(ctx, rg)
			require.NoError(t, err)
			for si, s := range g.Sets {
				entry := &domain.ExerciseRecord{GroupID: rg.ID, ExerciseID: s.ExerciseID, Date: date, Position: si, Metrics: s.Metrics.Clone()}
				_, err := records.CreateRecord(ctx, entry)
				require.NoError(t, err)
				assert.Equal(t, record.ID, entry.WorkoutRecordID)
			}
		}
	}
	_, err = records.CreateGroup(ctx, &domain.ExerciseRecordGroup{WorkoutRecordID: 0, ExerciseID: squat.ID})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	_, err = records.CreateRecord(ctx, &domain.ExerciseRecord{GroupID: 9999, ExerciseID: squat.ID})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)

	full, err := records.GetWithGroups(ctx, recordIDs[0])
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, full.Duration)
	require.Len(t, full.Groups, 2)
	require.Len(t, full.Groups[0].Records, 2)
	assert.Equal(t, 5, *full.Groups[0].Records[0].Reps)
	assert.Equal(t, 8, *full.Groups[0].Records[1].Reps)
	require.Len(t, full.Groups[1].Records, 1)
	assert.True(t, late.Equal(full.Groups[1].Records[0].Date))

	count, err := records.CountByWorkout(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	firstDate, err := records.FirstDateByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, firstDate)
	assert.True(t, early.Equal(*firstDate))
	none, err := records.FirstDateByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	listed, err := records.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.True(t, late.Equal(listed[0].Date), "newest first")

	// restamps every exercise record
	moved := early.Add(-48 * time.Hour)
	require.NoError(t, records.Update(ctx, &domain.WorkoutRecord{ID: recordIDs[1], Date: moved, Duration: time.Hour}))
	restamped, err := records.GetWithGroups(ctx, recordIDs[1])
	require.NoError(t, err)
	assert.Equal(t, time.Hour, restamped.Duration)
	for _, g := range restamped.Groups {
		for _, e := range g.Records {
			assert.True(t, moved.Equal(e.Date))
		}
	}
	firstDate, err = records.FirstDateByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, firstDate)
	assert.True(t, moved.Equal(*firstDate))

	require.NoError(t, users.SetFirstWorkoutDate(ctx, user.ID, firstDate))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstWorkoutDate)
	assert.True(t, moved.Equal(*got.FirstWorkoutDate))
	require.NoError(t, users.SetFirstWorkoutDate(ctx, user.ID, nil))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FirstWorkoutDate)

	_, err = photos.Create(ctx, &domain.ProgressPhoto{UserID: user.ID, WorkoutRecordID: recordIDs[0], ObjectKey: "k"})
	require.NoError(t, err)
	removed, err := photos.DeleteByRecord(ctx, recordIDs[0])
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "k", removed[0].ObjectKey)

	// a failed unit of work leaves nothing behind, nested calls included
	boom := errors.New("boom")
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, workouts.SetCompletedSessionCount(ctx, workout.ID, 7))
		require.NoError(t, workouts.DeleteGroups(ctx, []int64{first.ID}))
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := records.DeleteByWorkout(ctx, workout.ID)
			require.NoError(t, err)
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	after, err := workouts.GetWithGroups(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.CompletedSessionCount)
	require.Len(t, after.Groups, 2)
	assert.Len(t, after.Groups[0].Sets, 2)
	count, err = records.CountByWorkout(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return workouts.SetCompletedSessionCount(ctx, workout.ID, 2)
	})
	require.NoError(t, err)
	after, err = workouts.GetByID(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.CompletedSessionCount)

	// group removal cascades to sets
	require.NoError(t, workouts.DeleteGroups(ctx, []int64{second.ID}))
	n, err := db.Collection(setCollectionName).CountDocuments(ctx, bson.M{"groupId": second.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	deleted, err := records.DeleteByWorkout(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	n, err = db.Collection(exerciseRecordCollectionName).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
	firstDate, err = records.FirstDateByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, firstDate)

	require.NoError(t, workouts.Delete(ctx, workout.ID))
	_, err = workouts.GetByID(ctx, workout.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	n, err = db.Collection(setCollectionName).CountDocuments(ctx, bson.M{"workoutId": workout.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, exercises.Delete(ctx, squat.ID))
	assert.ErrorIs(t, exercises.Delete(ctx, squat.ID), repository.ErrNotFound)
}

func TestEnsureIndexesFailsWithoutUniqueEmail(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	db := client.Database("conflict")

	// same name and keys as the unique index, but not unique
	_, err := db.Collection(userCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_1"),
	})
	require.NoError(t, err)

	assert.Error(t, EnsureIndexes(ctx, db))
}
