package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"visionapi/internal/dto"
	"visionapi/internal/entity"
	"visionapi/pkg/postgres"
	"visionapi/pkg/types/errs"
)

const (
	// Table
	imagesTable = "images"

	// Columns
	idColumn           = "id"
	s3KeyColumn        = "s3_key"
	originalNameColumn = "original_name"
	fileSizeColumn     = "file_size"
	statusColumn       = "processing_status"
	uploadTimeColumn   = "upload_time"
	processedAtColumn  = "processed_at"
)

type ImageMetadataRepo struct {
	*postgres.Postgres
}

func NewImageMetadataRepo(pg *postgres.Postgres) *ImageMetadataRepo {
	return &ImageMetadataRepo{pg}
}

func (r *ImageMetadataRepo) Create(ctx context.Context, image *entity.Image) error {
	sql, args, err := r.Builder.
		Insert(imagesTable).
		Columns(
			idColumn,
			s3KeyColumn,
			originalNameColumn,
			fileSizeColumn,
			statusColumn,
			uploadTimeColumn,
		).
		Values(
			image.ID,
			image.S3Key,
			image.OriginalName,
			image.Size,
			image.Status,
			image.UploadTime,
		).ToSql()
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

// UpdateStatus is last-write-wins; repeating it with the same arguments
// leaves the row unchanged.
func (r *ImageMetadataRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, processedAt *time.Time) error {
	builder := r.Builder.
		Update(imagesTable).
		Set(statusColumn, status).
		Where(squirrel.Eq{idColumn: id})

	if processedAt != nil {
		builder = builder.Set(processedAtColumn, *processedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - UpdateStatus - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - UpdateStatus - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ImageMetadataRepo - UpdateStatus: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *ImageMetadataRepo) GetByKey(ctx context.Context, key string) (*entity.Image, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			s3KeyColumn,
			originalNameColumn,
			fileSizeColumn,
			statusColumn,
			uploadTimeColumn,
			processedAtColumn,
		).
		From(imagesTable).
		Where(squirrel.Eq{s3KeyColumn: key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetByKey - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var image entity.Image
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&image.ID,
		&image.S3Key,
		&image.OriginalName,
		&image.Size,
		&image.Status,
		&image.UploadTime,
		&image.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImageMetadataRepo - GetByKey: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageMetadataRepo - GetByKey - executor.QueryRow: %w", err)
	}

	return &image, nil
}

func (r *ImageMetadataRepo) GetAll(ctx context.Context) ([]*entity.Image, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			s3KeyColumn,
			originalNameColumn,
			fileSizeColumn,
			statusColumn,
			uploadTimeColumn,
			processedAtColumn,
		).
		From(imagesTable).
		OrderBy(uploadTimeColumn + " DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetAll - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetAll - executor.Query: %w", err)
	}
	defer rows.Close()

	var images []*entity.Image
	for rows.Next() {
		var image entity.Image
		err = rows.Scan(
			&image.ID,
			&image.S3Key,
			&image.OriginalName,
			&image.Size,
			&image.Status,
			&image.UploadTime,
			&image.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ImageMetadataRepo - GetAll - rows.Scan: %w", err)
		}
		images = append(images, &image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetAll - rows.Err: %w", err)
	}

	return images, nil
}

func (r *ImageMetadataRepo) GetProcessingStatus(ctx context.Context, id uuid.UUID) (*dto.StatusInfo, error) {
	sql, args, err := r.Builder.
		Select(statusColumn, processedAtColumn, uploadTimeColumn).
		From(imagesTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetProcessingStatus - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var info dto.StatusInfo
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&info.Status,
		&info.ProcessedAt,
		&info.UploadTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImageMetadataRepo - GetProcessingStatus: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageMetadataRepo - GetProcessingStatus - executor.QueryRow: %w", err)
	}

	return &info, nil
}

func (r *ImageMetadataRepo) TestConnection(ctx context.Context) error {
	var one int

	err := r.GetExecutor(ctx).QueryRow(ctx, "SELECT 1").Scan(&one)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - TestConnection - executor.QueryRow: %w", err)
	}

	return nil
}
