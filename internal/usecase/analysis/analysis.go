// Package analysis records verdicts produced by the external analysis
// worker. This service never computes annotations itself.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
	"visionapi/internal/repo"
	"visionapi/pkg/logger"
)

type AnalysisUseCase struct {
	metadataRepo repo.ImageMetadataRepo
	detections   repo.DetectionRepo
	logRepo      repo.ProcessingLogRepo
	transactor   repo.Transactor

	logger logger.Interface
}

func New(
	metadataRepo repo.ImageMetadataRepo,
	detections repo.DetectionRepo,
	logRepo repo.ProcessingLogRepo,
	transactor repo.Transactor,
	l logger.Interface,
) *AnalysisUseCase {
	return &AnalysisUseCase{
		metadataRepo: metadataRepo,
		detections:   detections,
		logRepo:      logRepo,
		transactor:   transactor,
		logger:       l,
	}
}

// SaveResults writes all sub-records in one transaction scoped to the
// image, then flips the status in a separate call. A partial failure
// therefore never leaves the image marked completed.
func (uc *AnalysisUseCase) SaveResults(ctx context.Context, imageID uuid.UUID, results dto.DetectionResults, processedAt time.Time) error {
	started := time.Now()

	faces := make([]entity.FaceDetection, len(results.Faces))
	for i, face := range results.Faces {
		face.PrimaryEmotion = primaryEmotion(face.Emotions)
		faces[i] = face
	}

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.detections.SaveLabels(ctx, imageID, results.Labels); err != nil {
			return fmt.Errorf("uc.detections.SaveLabels: %w", err)
		}

		if err := uc.detections.SavePersons(ctx, imageID, results.Persons); err != nil {
			return fmt.Errorf("uc.detections.SavePersons: %w", err)
		}

		if err := uc.detections.SaveFaces(ctx, imageID, faces); err != nil {
			return fmt.Errorf("uc.detections.SaveFaces: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("AnalysisUseCase - SaveResults - uc.transactor.WithinTransaction: %w", err)
	}

	err = uc.metadataRepo.UpdateStatus(ctx, imageID, entity.Completed, &processedAt)
	if err != nil {
		return fmt.Errorf("AnalysisUseCase - SaveResults - uc.metadataRepo.UpdateStatus: %w", err)
	}

	uc.logEvent(ctx, imageID, "completed",
		fmt.Sprintf("saved %d labels, %d persons, %d faces", len(results.Labels), len(results.Persons), len(faces)),
		time.Since(started))

	return nil
}

func (uc *AnalysisUseCase) MarkFailed(ctx context.Context, imageID uuid.UUID, reason string) error {
	err := uc.metadataRepo.UpdateStatus(ctx, imageID, entity.Failed, nil)
	if err != nil {
		return fmt.Errorf("AnalysisUseCase - MarkFailed - uc.metadataRepo.UpdateStatus: %w", err)
	}

	uc.logEvent(ctx, imageID, "failed", reason, 0)

	return nil
}

// primaryEmotion picks the highest-confidence entry for the
// denormalized copy on the face row.
func primaryEmotion(emotions []entity.Emotion) *entity.Emotion {
	if len(emotions) == 0 {
		return nil
	}

	best := emotions[0]
	for _, emotion := range emotions[1:] {
		if emotion.Confidence > best.Confidence {
			best = emotion
		}
	}

	return &best
}

func (uc *AnalysisUseCase) logEvent(ctx context.Context, imageID uuid.UUID, status, message string, duration time.Duration) {
	var durationMS *int64
	if duration > 0 {
		ms := duration.Milliseconds()
		durationMS = &ms
	}

	err := uc.logRepo.Append(ctx, &entity.ProcessingLog{
		ImageID:     imageID,
		ProcessType: "analysis",
		Status:      status,
		Message:     &message,
		DurationMS:  durationMS,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error(err, "AnalysisUseCase - logEvent - uc.logRepo.Append")
	}
}
