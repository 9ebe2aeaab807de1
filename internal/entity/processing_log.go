package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingLog is an append-only audit entry. Nothing reads these back
// over the API; they exist for operators digging through the database.
type ProcessingLog struct {
	ImageID     uuid.UUID `json:"image_id"`
	ProcessType string    `json:"process_type"`
	Status      string    `json:"status"`
	Message     *string   `json:"message,omitempty"`
	DurationMS  *int64    `json:"duration_ms,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
