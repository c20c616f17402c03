package service

import (
	"context"
	"errors"
	"fmt"
	"path" // For constructing object keys
	"strconv"
	"strings"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/storage"

	"github.com/google/uuid" // For generating unique identifiers for S3 keys
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// --- Error Definitions ---
var (
	ErrUploadURLError         = errors.New("failed to generate upload URL")
	ErrDownloadURLError       = errors.New("failed to generate download URL")
	ErrInvalidContentType     = errors.New("invalid or missing image content type")
	ErrObjectKeyNotRecognized = errors.New("object key does not belong to this workout record")
)

const photoKeyPrefix = "progress-photos"

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key client needs to report back on confirm
}

// PhotoWithURL is a photo together with a temporary download URL.
type PhotoWithURL struct {
	domain.ProgressPhoto
	DownloadURL string `json:"downloadUrl"`
}

type PhotoService interface {
	RequestUploadURL(ctx context.Context, userID, recordID int64, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, userID, recordID int64, objectKey, fileName string, fileSize int64, contentType string) (*domain.ProgressPhoto, error)
	ListPhotos(ctx context.Context, userID, recordID int64) ([]PhotoWithURL, error)
}

// photoService implements the PhotoService interface.
type photoService struct {
	records     repository.WorkoutRecordRepository
	photos      repository.PhotoRepository
	fileStorage storage.FileStorage
}

// NewPhotoService creates a new instance of photoService.
func NewPhotoService(
	records repository.WorkoutRecordRepository,
	photos repository.PhotoRepository,
	fileStorage storage.FileStorage,
) PhotoService {
	return &photoService{
		records:     records,
		photos:      photos,
		fileStorage: fileStorage,
	}
}

// ownedRecord loads a workout record and checks the caller owns it.
func (s *photoService) ownedRecord(ctx context.Context, op string, userID, recordID int64) (*domain.WorkoutRecord, error) {
	if err := checkID(op, "recordId", recordID); err != nil {
		return nil, err
	}
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, lookupFailure(op, err, ErrWorkoutRecordNotFound)
	}
	if err := Authorize(record, userID, CapabilityOwner); err != nil {
		return nil, reject(op, KindUnauthorized, err)
	}
	return record, nil
}

func photoKeyDir(userID, recordID int64) string {
	return path.Join(photoKeyPrefix, strconv.FormatInt(userID, 10), strconv.FormatInt(recordID, 10))
}

// RequestUploadURL generates a pre-signed URL for uploading a progress photo of a workout record.
func (s *photoService) RequestUploadURL(ctx context.Context, userID, recordID int64, contentType string) (*UploadURLResponse, error) {
	const op = "photos.requestUploadURL"
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, reject(op, KindInvalidArgument, ErrInvalidContentType)
	}
	if _, err := s.ownedRecord(ctx, op, userID, recordID); err != nil {
		return nil, err
	}

	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join(photoKeyDir(userID, recordID), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logrus.WithError(err).Error("presign upload url")
		return nil, reject(op, KindUnexpected, ErrUploadURLError)
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmUpload stores the photo metadata after the client uploaded the file
// with the pre-signed URL.
func (s *photoService) ConfirmUpload(ctx context.Context, userID, recordID int64, objectKey, fileName string, fileSize int64, contentType string) (*domain.ProgressPhoto, error) {
	const op = "photos.confirmUpload"
	if objectKey == "" || fileSize < 0 {
		return nil, invalid(op, "object key is required and size must not be negative")
	}
	if _, err := s.ownedRecord(ctx, op, userID, recordID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(objectKey, photoKeyDir(userID, recordID)+"/") {
		return nil, reject(op, KindInvalidArgument, ErrObjectKeyNotRecognized)
	}

	photo := &domain.ProgressPhoto{
		UserID:          userID,
		WorkoutRecordID: recordID,
		ObjectKey:       objectKey,
		FileName:        fileName,
		ContentType:     contentType,
		Size:            fileSize,
	}
	if _, err := s.photos.Create(ctx, photo); err != nil {
		return nil, writeFailure(op, err, false)
	}
	return photo, nil
}

// ListPhotos returns the record's photos with temporary download URLs.
func (s *photoService) ListPhotos(ctx context.Context, userID, recordID int64) ([]PhotoWithURL, error) {
	const op = "photos.list"
	if _, err := s.ownedRecord(ctx, op, userID, recordID); err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, reject(op, KindUnexpected, err)
	}

	out := make([]PhotoWithURL, 0, len(photos))
	for _, p := range photos {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, p.ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			logrus.WithError(err).WithField("photo_id", p.ID).Error("presign download url")
			return nil, reject(op, KindUnexpected, ErrDownloadURLError)
		}
		out = append(out, PhotoWithURL{ProgressPhoto: p, DownloadURL: url})
	}
	return out, nil
}

// photoJanitor detaches photo metadata inside a transaction and removes the
// stored objects once the transaction has committed.
type photoJanitor struct {
	photos      repository.PhotoRepository
	fileStorage storage.FileStorage // nil disables object removal
}

func (j photoJanitor) detach(ctx context.Context, recordID int64) ([]domain.ProgressPhoto, error) {
	return j.photos.DeleteByRecord(ctx, recordID)
}

// purge is best effort: a leftover object is only wasted space.
func (j photoJanitor) purge(ctx context.Context, photos []domain.ProgressPhoto) {
	if j.fileStorage == nil || len(photos) == 0 {
		return
	}
	var err error
	for _, p := range photos {
		err = multierr.Append(err, j.fileStorage.DeleteObject(ctx, p.ObjectKey))
	}
	if err != nil {
		logrus.WithError(err).Warnf("failed to remove %d of %d photo objects", len(multierr.Errors(err)), len(photos))
	}
}
