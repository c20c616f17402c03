package mongo

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
)

// EnsureIndexes creates the indexes of every collection. The unique email
// index backs duplicate registration detection, so failing to create it is
// returned as an error. The remaining indexes only speed up reads; their
// failures are collected and logged.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsureUserIndexes(ctx, db.Collection(userCollectionName)); err != nil {
		return fmt.Errorf("create unique email index: %w", err)
	}

	err := multierr.Combine(
		EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName)),
		EnsureWorkoutIndexes(ctx, db),
		EnsureWorkoutRecordIndexes(ctx, db),
		EnsurePhotoIndexes(ctx, db.Collection(photoCollectionName)),
	)
	if err != nil {
		logrus.WithError(err).Warnf("failed to create some indexes in %s", db.Name())
	}
	return nil
}
