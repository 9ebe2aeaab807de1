package image

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"visionapi/internal/entity"
)

func (uc *ImageUseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, limit, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *ImageUseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkAsProcessingBatch - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) MarkAsCompletedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsCompletedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkAsCompletedBatch - uc.outboxRepo.MarkAsCompletedBatch: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldCompletedAndFailed(ctx)
	if err != nil {
		return fmt.Errorf("ImageUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldCompletedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old outbox events, count = %d", count)
	}

	return nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	ids := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	return ids
}
