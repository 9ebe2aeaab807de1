package image

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
)

// buildView loads the detection fan-out for one image and attaches a
// presigned URL. Any failure skips the image, never the listing.
func (uc *ImageUseCase) buildView(ctx context.Context, img *entity.Image) (dto.ImageView, error) {
	labels, err := uc.detections.LabelsByImage(ctx, img.ID)
	if err != nil {
		return dto.ImageView{}, fmt.Errorf("uc.detections.LabelsByImage: %w", err)
	}

	persons, err := uc.detections.PersonsByImage(ctx, img.ID)
	if err != nil {
		return dto.ImageView{}, fmt.Errorf("uc.detections.PersonsByImage: %w", err)
	}

	faces, err := uc.detections.FacesByImage(ctx, img.ID)
	if err != nil {
		return dto.ImageView{}, fmt.Errorf("uc.detections.FacesByImage: %w", err)
	}

	url, err := uc.objectRepo.PresignedURL(ctx, img.S3Key, uc.opts.PresignTTL)
	if err != nil {
		return dto.ImageView{}, fmt.Errorf("uc.objectRepo.PresignedURL: %w", err)
	}

	uploadTime := img.UploadTime
	size := img.Size
	id := img.ID

	return dto.ImageView{
		Key:              img.S3Key,
		OriginalName:     img.OriginalName,
		UploadTime:       &uploadTime,
		Size:             &size,
		URL:              url,
		ProcessingStatus: img.Status,
		ProcessedAt:      img.ProcessedAt,
		ImageID:          &id,
		Labels:           labels,
		Persons:          persons,
		Faces:            faces,
	}, nil
}

func (uc *ImageUseCase) newUploadedEvent(img *entity.Image, contentType string) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"image_id":     img.ID,
		"s3_key":       img.S3Key,
		"content_type": contentType,
		"size":         img.Size,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: img.ID,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}, nil
}

// logEvent appends an audit row, best effort.
func (uc *ImageUseCase) logEvent(ctx context.Context, imageID uuid.UUID, processType, status, message string) {
	if uc.logRepo == nil {
		return
	}

	err := uc.logRepo.Append(ctx, &entity.ProcessingLog{
		ImageID:     imageID,
		ProcessType: processType,
		Status:      status,
		Message:     &message,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error(err, "ImageUseCase - logEvent - uc.logRepo.Append")
	}
}
