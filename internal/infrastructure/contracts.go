package infrastructure

import (
	"context"

	"visionapi/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}
)
