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
	workoutCollectionName  = "workouts"
	setGroupCollectionName = "exercise_set_groups"
	setCollectionName      = "exercise_sets"
)

var byPosition = bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}

// mongoWorkoutRepository implements repository.WorkoutRepository. Groups and
// sets live in their own collections keyed by workoutId.
type mongoWorkoutRepository struct {
	db       *mongo.Database
	workouts *mongo.Collection
	groups   *mongo.Collection
	sets     *mongo.Collection
}

// NewMongoWorkoutRepository creates a new repository for workouts.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		db:       db,
		workouts: db.Collection(workoutCollectionName),
		groups:   db.Collection(setGroupCollectionName),
		sets:     db.Collection(setCollectionName),
	}
}

// Create inserts a new workout without its groups.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (int64, error) {
	if workout.UserID <= 0 || workout.Name == "" {
		return 0, errors.New("workout requires userId and name")
	}

	id, err := nextID(ctx, r.db, workoutCollectionName)
	if err != nil {
		return 0, err
	}
	workout.ID = id
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	if _, err := r.workouts.InsertOne(ctx, workout); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves a workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id int64) (*domain.Workout, error) {
	var workout domain.Workout
	if err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&workout); err != nil {
		return nil, notFound(err)
	}
	return &workout, nil
}

func (r *mongoWorkoutRepository) GetWithGroups(ctx context.Context, id int64) (*domain.Workout, error) {
	workout, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workout.Groups, err = r.GetGroups(ctx, id); err != nil {
		return nil, err
	}
	return workout, nil
}

// ListByUser returns the user's workouts, pinned first, newest first.
func (r *mongoWorkoutRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.workouts.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	workouts := []domain.Workout{}
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update overwrites name, description and pinned.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	workout.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        workout.Name,
			"description": workout.Description,
			"pinned":      workout.Pinned,
			"updatedAt":   workout.UpdatedAt,
		},
	}
	result, err := r.workouts.UpdateOne(ctx, bson.M{"_id": workout.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutRepository) SetCompletedSessionCount(ctx context.Context, workoutID int64, count int) error {
	result, err := r.workouts.UpdateOne(ctx, bson.M{"_id": workoutID}, bson.M{"$set": bson.M{"completedSessionCount": count}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the workout, its groups and its sets.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.workouts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	if _, err := r.sets.DeleteMany(ctx, bson.M{"workoutId": id}); err != nil {
		return err
	}
	_, err = r.groups.DeleteMany(ctx, bson.M{"workoutId": id})
	return err
}

func (r *mongoWorkoutRepository) CreateGroup(ctx context.Context, group *domain.ExerciseSetGroup) (int64, error) {
	if err := requireParent(ctx, r.workouts, group.WorkoutID); err != nil {
		return 0, err
	}
	id, err := nextID(ctx, r.db, setGroupCollectionName)
	if err != nil {
		return 0, err
	}
	group.ID = id
	if _, err := r.groups.InsertOne(ctx, group); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateSet inserts a set under an existing group and copies the group's
// workout id onto it.
func (r *mongoWorkoutRepository) CreateSet(ctx context.Context, set *domain.ExerciseSet) (int64, error) {
	if set.GroupID <= 0 {
		return 0, repository.ErrInvalidReference
	}
	var group domain.ExerciseSetGroup
	if err := r.groups.FindOne(ctx, bson.M{"_id": set.GroupID}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrInvalidReference
		}
		return 0, err
	}

	id, err := nextID(ctx, r.db, setCollectionName)
	if err != nil {
		return 0, err
	}
	set.ID = id
	set.WorkoutID = group.WorkoutID
	if _, err := r.sets.InsertOne(ctx, set); err != nil {
		return 0, err
	}
	return id, nil
}

// GetGroups loads the groups of a workout and all of their sets with two queries.
func (r *mongoWorkoutRepository) GetGroups(ctx context.Context, workoutID int64) ([]domain.ExerciseSetGroup, error) {
	cursor, err := r.groups.Find(ctx, bson.M{"workoutId": workoutID}, options.Find().SetSort(byPosition))
	if err != nil {
		return nil, err
	}
	groups := []domain.ExerciseSetGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return groups, nil
	}

	cursor, err = r.sets.Find(ctx, bson.M{"workoutId": workoutID}, options.Find().SetSort(byPosition))
	if err != nil {
		return nil, err
	}
	var sets []domain.ExerciseSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(groups))
	for i := range groups {
		groups[i].Sets = []domain.ExerciseSet{}
		index[groups[i].ID] = i
	}
	for _, s := range sets {
		if i, ok := index[s.GroupID]; ok {
			groups[i].Sets = append(groups[i].Sets, s)
		}
	}
	return groups, nil
}

// DeleteGroups removes the given groups and their sets.
func (r *mongoWorkoutRepository) DeleteGroups(ctx context.Context, groupIDs []int64) error {
	if len(groupIDs) == 0 {
		return nil
	}
	if _, err := r.sets.DeleteMany(ctx, bson.M{"groupId": bson.M{"$in": groupIDs}}); err != nil {
		return err
	}
	_, err := r.groups.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": groupIDs}})
	return err
}

// EnsureWorkoutIndexes creates the indexes of the plan collections.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(workoutCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "pinned", Value: -1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection(setGroupCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "position", Value: 1}}},
		{Keys: bson.D{{Key: "exerciseId", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(setCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}}},
		{Keys: bson.D{{Key: "groupId", Value: 1}}},
	})
	return err
}
