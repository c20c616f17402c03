package domain

import (
	"time"
)

// ProgressPhoto stores metadata about a photo attached to a workout record.
// The actual file resides in S3.
type ProgressPhoto struct {
	ID              int64     `bson:"_id" json:"id"`
	UserID          int64     `bson:"userId" json:"userId"`
	WorkoutRecordID int64     `bson:"workoutRecordId" json:"workoutRecordId"`
	ObjectKey       string    `bson:"objectKey" json:"-"` // internal use
	FileName        string    `bson:"fileName" json:"fileName"`
	ContentType     string    `bson:"contentType" json:"contentType"`
	Size            int64     `bson:"size" json:"size"`
	UploadedAt      time.Time `bson:"uploadedAt" json:"uploadedAt"`
}
