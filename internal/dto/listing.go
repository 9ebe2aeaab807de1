package dto

import (
	"time"

	"github.com/google/uuid"

	"visionapi/internal/entity"
)

type ListSource string

const (
	SourceDatabase   ListSource = "database"
	SourceS3Fallback ListSource = "s3_fallback"
	SourceS3Error    ListSource = "s3_error"
)

// ImageView is one listing entry with a presigned URL. Fields that the
// fallback path cannot know (id, processed timestamp) stay nil.
type ImageView struct {
	Key              string
	OriginalName     string
	UploadTime       *time.Time
	Size             *int64
	URL              string
	ProcessingStatus entity.Status
	ProcessedAt      *time.Time
	ImageID          *uuid.UUID

	Labels  []entity.Label
	Persons []entity.PersonDetection
	Faces   []entity.FaceDetection
}

type ImageListing struct {
	Images []ImageView
	Source ListSource
}
