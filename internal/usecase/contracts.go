package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
)

type (
	ImageUseCase interface {
		// UploadImages processes files sequentially in arrival order and
		// never fails the batch for a single bad file; the only hard
		// error is an empty batch.
		UploadImages(ctx context.Context, files []dto.FileUpload) ([]dto.UploadResult, error)
		// ListImages reads from metadata when possible and falls back to
		// a raw storage listing otherwise.
		ListImages(ctx context.Context) (dto.ImageListing, error)
		ImageURL(ctx context.Context, key string) (string, error)
		ProcessingStatus(ctx context.Context, id uuid.UUID) (*dto.StatusInfo, error)
		BatchProcessingStatus(ctx context.Context, ids []uuid.UUID) (map[string]dto.StatusInfo, error)

		MetadataEnabled() bool
		Bucket() string
		CheckStorage(ctx context.Context) error
		CheckMetadata(ctx context.Context) error

		// Outbox relay operations.
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsCompletedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	// AnalysisUseCase records verdicts produced by the external analysis
	// worker. The status flip to completed happens strictly after the
	// detection sub-records commit.
	AnalysisUseCase interface {
		SaveResults(ctx context.Context, imageID uuid.UUID, results dto.DetectionResults, processedAt time.Time) error
		MarkFailed(ctx context.Context, imageID uuid.UUID, reason string) error
	}
)
