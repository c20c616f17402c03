package mongo

import (
	"context"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const photoCollectionName = "progress_photos"

// mongoPhotoRepository implements repository.PhotoRepository
type mongoPhotoRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	records    *mongo.Collection
}

// NewMongoPhotoRepository creates a new repository for progress photo metadata.
func NewMongoPhotoRepository(db *mongo.Database) repository.PhotoRepository {
	return &mongoPhotoRepository{
		db:         db,
		collection: db.Collection(photoCollectionName),
		records:    db.Collection(recordCollectionName),
	}
}

// Create inserts photo metadata for an existing workout record.
func (r *mongoPhotoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error) {
	if err := requireParent(ctx, r.records, photo.WorkoutRecordID); err != nil {
		return 0, err
	}
	id, err := nextID(ctx, r.db, photoCollectionName)
	if err != nil {
		return 0, err
	}
	photo.ID = id
	photo.UploadedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, photo); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves photo metadata by its ID.
func (r *mongoPhotoRepository) GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error) {
	var photo domain.ProgressPhoto
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&photo); err != nil {
		return nil, notFound(err)
	}
	return &photo, nil
}

func (r *mongoPhotoRepository) ListByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"workoutRecordId": workoutRecordID}, findOptions)
	if err != nil {
		return nil, err
	}
	photos := []domain.ProgressPhoto{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *mongoPhotoRepository) DeleteByRecord(ctx context.Context, workoutRecordID int64) ([]domain.ProgressPhoto, error) {
	photos, err := r.ListByRecord(ctx, workoutRecordID)
	if err != nil || len(photos) == 0 {
		return photos, err
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"workoutRecordId": workoutRecordID}); err != nil {
		return nil, err
	}
	return photos, nil
}

// EnsurePhotoIndexes creates necessary indexes for the progress_photos collection.
func EnsurePhotoIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "workoutRecordId", Value: 1}},
	})
	return err
}
