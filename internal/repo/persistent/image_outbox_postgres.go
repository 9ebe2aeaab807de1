package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"visionapi/internal/entity"
	"visionapi/pkg/postgres"
	"visionapi/pkg/types/errs"
)

const (
	// Table
	outboxTable = "images_outbox"

	// Columns
	outboxIDColumn          = "id"
	outboxAggregateIDColumn = "aggregate_id"
	outboxPayloadColumn     = "payload"
	outboxStatusColumn      = "status"
	outboxCreatedAtColumn   = "created_at"
	outboxProcessedAtColumn = "processed_at"
	outboxRetryCountColumn  = "retry_count"
)

// OutboxRepo stores uploaded-image events in the same database as the
// metadata, so one transaction covers both the pending record and the
// announcement the relay will publish.
type OutboxRepo struct {
	*postgres.Postgres
}

func NewOutboxRepo(pg *postgres.Postgres) *OutboxRepo {
	return &OutboxRepo{pg}
}

func (r *OutboxRepo) Create(ctx context.Context, event *entity.OutboxEvent) error {
	sql, args, err := r.Builder.
		Insert(outboxTable).
		Columns(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxStatusColumn,
			outboxCreatedAtColumn,
			outboxRetryCountColumn,
		).
		Values(
			event.ID,
			event.AggregateID,
			event.Payload,
			event.Status,
			event.CreatedAt,
			event.RetryCount,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxRepo) GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*entity.OutboxEvent, error) {
	sql, args, err := r.Builder.
		Select(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxStatusColumn,
			outboxCreatedAtColumn,
			outboxProcessedAtColumn,
			outboxRetryCountColumn,
		).
		From(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: entity.Pending},
			squirrel.Lt{outboxRetryCountColumn: maxRetries},
		}).
		OrderBy(outboxCreatedAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - executor.Query: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.OutboxEvent, 0, limit)
	for rows.Next() {
		var event entity.OutboxEvent
		err = rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.Payload,
			&event.Status,
			&event.CreatedAt,
			&event.ProcessedAt,
			&event.RetryCount,
		)
		if err != nil {
			return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - rows.Scan: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - rows.Err: %w", err)
	}

	return events, nil
}

func (r *OutboxRepo) MarkAsProcessingBatch(ctx context.Context, ids uuid.UUIDs) error {
	return r.markBatch(ctx, "MarkAsProcessingBatch", ids, entity.Processing, true)
}

func (r *OutboxRepo) MarkAsCompletedBatch(ctx context.Context, ids uuid.UUIDs) error {
	return r.markBatch(ctx, "MarkAsCompletedBatch", ids, entity.Completed, true)
}

func (r *OutboxRepo) MarkAsFailedBatch(ctx context.Context, ids uuid.UUIDs) error {
	return r.markBatch(ctx, "MarkAsFailedBatch", ids, entity.Failed, false)
}

func (r *OutboxRepo) markBatch(ctx context.Context, op string, ids uuid.UUIDs, status entity.Status, stamp bool) error {
	builder := r.Builder.
		Update(outboxTable).
		Set(outboxStatusColumn, status).
		Where(squirrel.Eq{outboxIDColumn: ids})

	if stamp {
		builder = builder.Set(outboxProcessedAtColumn, time.Now())
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - %s - r.Builder.ToSql: %w", op, err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - %s - executor.Exec: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OutboxRepo - %s: %w", op, errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		Set(outboxStatusColumn, entity.Failed).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: string(entity.Pending)},
			squirrel.GtOrEq{outboxRetryCountColumn: maxRetries},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - MarkMaxRetriesAsFailed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - MarkMaxRetriesAsFailed - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxRepo) IncrementRetryCountBatch(ctx context.Context, ids uuid.UUIDs) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		Set(outboxRetryCountColumn, squirrel.Expr(outboxRetryCountColumn+" + 1")).
		Set(outboxStatusColumn, entity.Pending).
		Where(squirrel.Eq{outboxIDColumn: ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - IncrementRetryCountBatch - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - IncrementRetryCountBatch - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OutboxRepo - IncrementRetryCountBatch: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) DeleteOldCompletedAndFailed(ctx context.Context) (int64, error) {
	sql, args, err := r.Builder.
		Delete(outboxTable).
		Where(squirrel.Or{
			squirrel.Eq{outboxStatusColumn: string(entity.Completed)},
			squirrel.Eq{outboxStatusColumn: string(entity.Failed)},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("OutboxRepo - DeleteOldCompletedAndFailed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)
	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("OutboxRepo - DeleteOldCompletedAndFailed - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}
