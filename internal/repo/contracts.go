package repo

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
)

type (
	// ObjectRepo is the object storage adapter. Callers must not assume
	// a write landed unless Put returned nil.
	ObjectRepo interface {
		Put(ctx context.Context, key string, data io.Reader, contentType string, size int64, metadata map[string]string) error
		PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
		Head(ctx context.Context, key string) error
		List(ctx context.Context, prefix string) ([]entity.StorageObject, error)
		HeadBucket(ctx context.Context) error
	}

	// ImageMetadataRepo owns the images table.
	ImageMetadataRepo interface {
		Create(ctx context.Context, image *entity.Image) error
		// UpdateStatus is idempotent; repeating a call with the same
		// arguments is safe (last write wins).
		UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, processedAt *time.Time) error
		GetByKey(ctx context.Context, key string) (*entity.Image, error)
		// GetAll returns base rows newest-first, without sub-records.
		GetAll(ctx context.Context) ([]*entity.Image, error)
		GetProcessingStatus(ctx context.Context, id uuid.UUID) (*dto.StatusInfo, error)
		TestConnection(ctx context.Context) error
	}

	// DetectionRepo owns the detection sub-tables. Save* calls are meant
	// to run inside one transaction scoped to a single image.
	DetectionRepo interface {
		SaveLabels(ctx context.Context, imageID uuid.UUID, labels []entity.Label) error
		SavePersons(ctx context.Context, imageID uuid.UUID, persons []entity.PersonDetection) error
		SaveFaces(ctx context.Context, imageID uuid.UUID, faces []entity.FaceDetection) error
		LabelsByImage(ctx context.Context, imageID uuid.UUID) ([]entity.Label, error)
		PersonsByImage(ctx context.Context, imageID uuid.UUID) ([]entity.PersonDetection, error)
		FacesByImage(ctx context.Context, imageID uuid.UUID) ([]entity.FaceDetection, error)
	}

	// ProcessingLogRepo appends audit entries; they are never read back
	// through the API.
	ProcessingLogRepo interface {
		Append(ctx context.Context, entry *entity.ProcessingLog) error
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkAsCompletedBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkAsFailedBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		IncrementRetryCountBatch(ctx context.Context, ids uuid.UUIDs) error
		DeleteOldCompletedAndFailed(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
