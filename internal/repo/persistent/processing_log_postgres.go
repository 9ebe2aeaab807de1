package persistent

import (
	"context"
	"fmt"

	"visionapi/internal/entity"
	"visionapi/pkg/postgres"
)

const (
	// Table
	processingLogsTable = "processing_logs"

	// Columns
	logImageIDColumn     = "image_id"
	logProcessTypeColumn = "process_type"
	logStatusColumn      = "status"
	logMessageColumn     = "message"
	logDurationColumn    = "processing_time_ms"
	logCreatedAtColumn   = "created_at"
)

type ProcessingLogRepo struct {
	*postgres.Postgres
}

func NewProcessingLogRepo(pg *postgres.Postgres) *ProcessingLogRepo {
	return &ProcessingLogRepo{pg}
}

func (r *ProcessingLogRepo) Append(ctx context.Context, entry *entity.ProcessingLog) error {
	sql, args, err := r.Builder.
		Insert(processingLogsTable).
		Columns(
			logImageIDColumn,
			logProcessTypeColumn,
			logStatusColumn,
			logMessageColumn,
			logDurationColumn,
			logCreatedAtColumn,
		).
		Values(
			entry.ImageID,
			entry.ProcessType,
			entry.Status,
			entry.Message,
			entry.DurationMS,
			entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("ProcessingLogRepo - Append - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ProcessingLogRepo - Append - executor.Exec: %w", err)
	}

	return nil
}
