package dto

import (
	"time"

	"visionapi/internal/entity"
)

type StatusInfo struct {
	Status      entity.Status
	ProcessedAt *time.Time
	UploadTime  time.Time
}
