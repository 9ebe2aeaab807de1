package image

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
	"visionapi/internal/repo"
	"visionapi/pkg/logger"
	"visionapi/pkg/types/errs"
)

// Options are the static settings the use-case needs from config.
type Options struct {
	Bucket       string
	UploadPrefix string
	PresignTTL   time.Duration
	UploaderTag  string
}

type ImageUseCase struct {
	objectRepo   repo.ObjectRepo
	metadataRepo repo.ImageMetadataRepo
	detections   repo.DetectionRepo
	logRepo      repo.ProcessingLogRepo
	outboxRepo   repo.OutboxRepo
	transactor   repo.Transactor

	opts   Options
	logger logger.Interface
}

// New builds the use-case. The metadata-side repos may all be nil, in
// which case the service runs storage-only: uploads report null image
// ids and listing uses the storage fallback.
func New(
	objectRepo repo.ObjectRepo,
	metadataRepo repo.ImageMetadataRepo,
	detections repo.DetectionRepo,
	logRepo repo.ProcessingLogRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	opts Options,
	l logger.Interface,
) *ImageUseCase {
	return &ImageUseCase{
		objectRepo:   objectRepo,
		metadataRepo: metadataRepo,
		detections:   detections,
		logRepo:      logRepo,
		outboxRepo:   outboxRepo,
		transactor:   transactor,
		opts:         opts,
		logger:       l,
	}
}

func (uc *ImageUseCase) MetadataEnabled() bool {
	return uc.metadataRepo != nil
}

func (uc *ImageUseCase) Bucket() string {
	return uc.opts.Bucket
}

func (uc *ImageUseCase) UploadImages(ctx context.Context, files []dto.FileUpload) ([]dto.UploadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("ImageUseCase - UploadImages: %w", errs.ErrNoFilesProvided)
	}

	results := make([]dto.UploadResult, 0, len(files))

	// Sequential on purpose: result ordering must match request order
	// and one file's failure must not touch another's bookkeeping.
	for _, file := range files {
		if file.Name == "" {
			continue
		}

		results = append(results, uc.uploadOne(ctx, file))
	}

	return results, nil
}

func (uc *ImageUseCase) uploadOne(ctx context.Context, file dto.FileUpload) dto.UploadResult {
	if file.Data == nil {
		return dto.UploadResult{
			OriginalName: file.Name,
			Status:       dto.UploadStatusFailed,
			Error:        "unable to read file",
		}
	}

	key := fmt.Sprintf("%s%s%s", uc.opts.UploadPrefix, uuid.New(), strings.ToLower(filepath.Ext(file.Name)))

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := time.Now().UTC()

	err := uc.objectRepo.Put(ctx, key, file.Data, contentType, file.Size, map[string]string{
		"original-name": file.Name,
		"upload-time":   now.Format(time.RFC3339),
		"uploaded-by":   uc.opts.UploaderTag,
	})
	if err != nil {
		uc.logger.Error(err, "ImageUseCase - uploadOne - uc.objectRepo.Put")

		return dto.UploadResult{
			OriginalName: file.Name,
			Status:       dto.UploadStatusFailed,
			Error:        err.Error(),
		}
	}

	result := dto.UploadResult{
		Key:              key,
		OriginalName:     file.Name,
		Bucket:           uc.opts.Bucket,
		Status:           dto.UploadStatusUploaded,
		ProcessingStatus: entity.Pending,
		Size:             file.Size,
		UploadTime:       now,
	}

	if !uc.MetadataEnabled() {
		return result
	}

	image := &entity.Image{
		ID:           uuid.New(),
		S3Key:        key,
		OriginalName: file.Name,
		Size:         file.Size,
		Status:       entity.Pending,
		UploadTime:   now,
	}

	// The pending record and the uploaded-image event commit together;
	// if that fails the object stays in storage and the file is still
	// reported as uploaded with a null id. Storage is the system of
	// record for bytes, so the object is never rolled back.
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.metadataRepo.Create(ctx, image); err != nil {
			return fmt.Errorf("uc.metadataRepo.Create: %w", err)
		}

		event, err := uc.newUploadedEvent(image, contentType)
		if err != nil {
			return fmt.Errorf("uc.newUploadedEvent: %w", err)
		}

		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Error(err, "ImageUseCase - uploadOne - uc.transactor.WithinTransaction")

		return result
	}

	result.ImageID = &image.ID

	uc.logEvent(ctx, image.ID, "upload", "completed", fmt.Sprintf("Uploaded to S3: %s", key))

	return result
}

func (uc *ImageUseCase) ListImages(ctx context.Context) (dto.ImageListing, error) {
	if uc.MetadataEnabled() {
		images, err := uc.metadataRepo.GetAll(ctx)
		if err == nil {
			views := make([]dto.ImageView, 0, len(images))

			for _, img := range images {
				view, err := uc.buildView(ctx, img)
				if err != nil {
					// One bad record must not fail the whole listing.
					uc.logger.Error(err, "ImageUseCase - ListImages - uc.buildView, key=%s", img.S3Key)
					continue
				}
				views = append(views, view)
			}

			return dto.ImageListing{Images: views, Source: dto.SourceDatabase}, nil
		}

		uc.logger.Error(err, "ImageUseCase - ListImages - uc.metadataRepo.GetAll, falling back to storage listing")
	}

	return uc.listFromStorage(ctx)
}

func (uc *ImageUseCase) listFromStorage(ctx context.Context) (dto.ImageListing, error) {
	objects, err := uc.objectRepo.List(ctx, uc.opts.UploadPrefix)
	if err != nil {
		return dto.ImageListing{Images: []dto.ImageView{}, Source: dto.SourceS3Error},
			fmt.Errorf("ImageUseCase - listFromStorage - uc.objectRepo.List: %w", err)
	}

	// Without metadata nothing is known about the worker, so status is
	// unknown; with metadata merely failing, pending work is presumed.
	status := entity.Unknown
	if uc.MetadataEnabled() {
		status = entity.Processing
	}

	views := make([]dto.ImageView, 0, len(objects))
	for _, obj := range objects {
		url, err := uc.objectRepo.PresignedURL(ctx, obj.Key, uc.opts.PresignTTL)
		if err != nil {
			uc.logger.Error(err, "ImageUseCase - listFromStorage - uc.objectRepo.PresignedURL, key=%s", obj.Key)
			continue
		}

		lastModified := obj.LastModified
		size := obj.Size
		views = append(views, dto.ImageView{
			Key:              obj.Key,
			OriginalName:     path.Base(obj.Key),
			UploadTime:       &lastModified,
			Size:             &size,
			URL:              url,
			ProcessingStatus: status,
		})
	}

	return dto.ImageListing{Images: views, Source: dto.SourceS3Fallback}, nil
}

func (uc *ImageUseCase) ImageURL(ctx context.Context, key string) (string, error) {
	// Existence check before presigning: a presigned URL itself says
	// nothing about whether the key exists.
	if uc.MetadataEnabled() {
		if _, err := uc.metadataRepo.GetByKey(ctx, key); err != nil {
			return "", fmt.Errorf("ImageUseCase - ImageURL - uc.metadataRepo.GetByKey: %w", err)
		}
	} else if err := uc.objectRepo.Head(ctx, key); err != nil {
		return "", fmt.Errorf("ImageUseCase - ImageURL - uc.objectRepo.Head: %w", err)
	}

	url, err := uc.objectRepo.PresignedURL(ctx, key, uc.opts.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("ImageUseCase - ImageURL - uc.objectRepo.PresignedURL: %w", err)
	}

	return url, nil
}

func (uc *ImageUseCase) ProcessingStatus(ctx context.Context, id uuid.UUID) (*dto.StatusInfo, error) {
	if !uc.MetadataEnabled() {
		return nil, fmt.Errorf("ImageUseCase - ProcessingStatus: %w", errs.ErrMetadataDisabled)
	}

	info, err := uc.metadataRepo.GetProcessingStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - ProcessingStatus - uc.metadataRepo.GetProcessingStatus: %w", err)
	}

	return info, nil
}

func (uc *ImageUseCase) BatchProcessingStatus(ctx context.Context, ids []uuid.UUID) (map[string]dto.StatusInfo, error) {
	if !uc.MetadataEnabled() {
		return nil, fmt.Errorf("ImageUseCase - BatchProcessingStatus: %w", errs.ErrMetadataDisabled)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("ImageUseCase - BatchProcessingStatus: %w", errs.ErrNoImageIDs)
	}

	statuses := make(map[string]dto.StatusInfo, len(ids))

	for _, id := range ids {
		info, err := uc.metadataRepo.GetProcessingStatus(ctx, id)
		if err != nil {
			// Unknown ids are silently omitted.
			if errors.Is(err, errs.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("ImageUseCase - BatchProcessingStatus - uc.metadataRepo.GetProcessingStatus: %w", err)
		}
		statuses[id.String()] = *info
	}

	return statuses, nil
}

func (uc *ImageUseCase) CheckStorage(ctx context.Context) error {
	if err := uc.objectRepo.HeadBucket(ctx); err != nil {
		return fmt.Errorf("ImageUseCase - CheckStorage - uc.objectRepo.HeadBucket: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) CheckMetadata(ctx context.Context) error {
	if !uc.MetadataEnabled() {
		return fmt.Errorf("ImageUseCase - CheckMetadata: %w", errs.ErrMetadataDisabled)
	}

	if err := uc.metadataRepo.TestConnection(ctx); err != nil {
		return fmt.Errorf("ImageUseCase - CheckMetadata - uc.metadataRepo.TestConnection: %w", err)
	}

	return nil
}
