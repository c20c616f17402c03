package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	recordCollectionName         = "workout_records"
	recordGroupCollectionName    = "exercise_record_groups"
	exerciseRecordCollectionName = "exercise_records"
)

// mongoWorkoutRecordRepository implements repository.WorkoutRecordRepository.
type mongoWorkoutRecordRepository struct {
	db       *mongo.Database
	records  *mongo.Collection
	groups   *mongo.Collection
	entries  *mongo.Collection // exercise records
	workouts *mongo.Collection
}

// NewMongoWorkoutRecordRepository creates a new repository for workout records.
func NewMongoWorkoutRecordRepository(db *mongo.Database) repository.WorkoutRecordRepository {
	return &mongoWorkoutRecordRepository{
		db:       db,
		records:  db.Collection(recordCollectionName),
		groups:   db.Collection(recordGroupCollectionName),
		entries:  db.Collection(exerciseRecordCollectionName),
		workouts: db.Collection(workoutCollectionName),
	}
}

// Create inserts the record shell. The workout must exist.
func (r *mongoWorkoutRecordRepository) Create(ctx context.Context, record *domain.WorkoutRecord) (int64, error) {
	if record.UserID <= 0 {
		return 0, errors.New("workout record requires userId")
	}
	if err := requireParent(ctx, r.workouts, record.WorkoutID); err != nil {
		return 0, err
	}

	id, err := nextID(ctx, r.db, recordCollectionName)
	if err != nil {
		return 0, err
	}
	record.ID = id
	record.CreatedAt = time.Now().UTC()
	if _, err := r.records.InsertOne(ctx, record); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoWorkoutRecordRepository) GetByID(ctx context.Context, id int64) (*domain.WorkoutRecord, error) {
	var record domain.WorkoutRecord
	if err := r.records.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

func (r *mongoWorkoutRecordRepository) GetWithGroups(ctx context.Context, id int64) (*domain.WorkoutRecord, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Groups, err = r.GetGroups(ctx, id); err != nil {
		return nil, err
	}
	return record, nil
}

// ListByUser returns the user's records, newest first.
func (r *mongoWorkoutRecordRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WorkoutRecord, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *mongoWorkoutRecordRepository) ListByWorkout(ctx context.Context, workoutID int64) ([]domain.WorkoutRecord, error) {
	return r.list(ctx, bson.M{"workoutId": workoutID})
}

func (r *mongoWorkoutRecordRepository) list(ctx context.Context, filter bson.M) ([]domain.WorkoutRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.records.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	records := []domain.WorkoutRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Update overwrites date and duration only.
func (r *mongoWorkoutRecordRepository) Update(ctx context.Context, record *domain.WorkoutRecord) error {
	update := bson.M{"$set": bson.M{"date": record.Date, "duration": record.Duration}}
	result, err := r.records.UpdateOne(ctx, bson.M{"_id": record.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	// Exercise records carry the record date.
	_, err = r.entries.UpdateMany(ctx, bson.M{"workoutRecordId": record.ID}, bson.M{"$set": bson.M{"date": record.Date}})
	return err
}

// Delete removes the record with its groups and exercise records.
func (r *mongoWorkoutRecordRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.records.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return r.deleteChildren(ctx, bson.M{"workoutRecordId": id})
}

// DeleteByWorkout removes every record of a workout and returns how many there were.
func (r *mongoWorkoutRecordRepository) DeleteByWorkout(ctx context.Context, workoutID int64) (int64, error) {
	cursor, err := r.records.Find(ctx, bson.M{"workoutId": workoutID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, err
	}
	var docs []struct {
		ID int64 `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	if err := r.deleteChildren(ctx, bson.M{"workoutRecordId": bson.M{"$in": ids}}); err != nil {
		return 0, err
	}
	result, err := r.records.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoWorkoutRecordRepository) deleteChildren(ctx context.Context, filter bson.M) error {
	if _, err := r.entries.DeleteMany(ctx, filter); err != nil {
		return err
	}
	_, err := r.groups.DeleteMany(ctx, filter)
	return err
}

func (r *mongoWorkoutRecordRepository) CreateGroup(ctx context.Context, group *domain.ExerciseRecordGroup) (int64, error) {
	if err := requireParent(ctx, r.records, group.WorkoutRecordID); err != nil {
		return 0, err
	}
	id, err := nextID(ctx, r.db, recordGroupCollectionName)
	if err != nil {
		return 0, err
	}
	group.ID = id
	if _, err := r.groups.InsertOne(ctx, group); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateRecord inserts an exercise record under an existing group and copies
// the group's workout record id onto it.
func (r *mongoWorkoutRecordRepository) CreateRecord(ctx context.Context, record *domain.ExerciseRecord) (int64, error) {
	if record.GroupID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	var group domain.ExerciseRecordGroup
	if err := r.groups.FindOne(ctx, bson.M{"_id": record.GroupID}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrInvalidReference
		}
		return 0, err
	}

	id, err := nextID(ctx, r.db, exerciseRecordCollectionName)
	if err != nil {
		return 0, err
	}
	record.ID = id
	record.WorkoutRecordID = group.WorkoutRecordID
	if _, err := r.entries.InsertOne(ctx, record); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoWorkoutRecordRepository) GetGroups(ctx context.Context, workoutRecordID int64) ([]domain.ExerciseRecordGroup, error) {
	cursor, err := r.groups.Find(ctx, bson.M{"workoutRecordId": workoutRecordID}, options.Find().SetSort(byPosition))
	if err != nil {
		return nil, err
	}
	groups := []domain.ExerciseRecordGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return groups, nil
	}

	cursor, err = r.entries.Find(ctx, bson.M{"workoutRecordId": workoutRecordID}, options.Find().SetSort(byPosition))
	if err != nil {
		return nil, err
	}
	var entries []domain.ExerciseRecord
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(groups))
	for i := range groups {
		groups[i].Records = []domain.ExerciseRecord{}
		index[groups[i].ID] = i
	}
	for _, e := range entries {
		if i, ok := index[e.GroupID]; ok {
			groups[i].Records = append(groups[i].Records, e)
		}
	}
	return groups, nil
}

func (r *mongoWorkoutRecordRepository) DeleteGroups(ctx context.Context, groupIDs []int64) error {
	if len(groupIDs) == 0 {
		return nil
	}
	if _, err := r.entries.DeleteMany(ctx, bson.M{"groupId": bson.M{"$in": groupIDs}}); err != nil {
		return err
	}
	_, err := r.groups.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": groupIDs}})
	return err
}

func (r *mongoWorkoutRecordRepository) CountByWorkout(ctx context.Context, workoutID int64) (int, error) {
	n, err := r.records.CountDocuments(ctx, bson.M{"workoutId": workoutID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FirstDateByUser reads the earliest record date through the (userId, date) index.
func (r *mongoWorkoutRecordRepository) FirstDateByUser(ctx context.Context, userID int64) (*time.Time, error) {
	var doc struct {
		Date time.Time `bson:"date"`
	}
	findOptions := options.FindOne().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetProjection(bson.M{"date": 1})
	err := r.records.FindOne(ctx, bson.M{"userId": userID}, findOptions).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	date := doc.Date.UTC()
	return &date, nil
}

// EnsureWorkoutRecordIndexes creates the indexes of the record collections.
func EnsureWorkoutRecordIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(recordCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "workoutId", Value: 1}}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection(recordGroupCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutRecordId", Value: 1}, {Key: "position", Value: 1}}},
		{Keys: bson.D{{Key: "exerciseId", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(exerciseRecordCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutRecordId", Value: 1}}},
		{Keys: bson.D{{Key: "groupId", Value: 1}}},
	})
	return err
}
