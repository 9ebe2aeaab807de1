package entity

import (
	"time"

	"github.com/google/uuid"
)

// Image is the metadata record for one uploaded object. The storage key
// is unique and never reused; the bytes themselves live in object
// storage, the metadata store is the source of truth for status.
type Image struct {
	ID uuid.UUID `json:"id"`

	S3Key        string `json:"s3_key"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`

	Status      Status     `json:"status"`
	UploadTime  time.Time  `json:"upload_time"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Labels  []Label           `json:"labels,omitempty"`
	Persons []PersonDetection `json:"persons,omitempty"`
	Faces   []FaceDetection   `json:"faces,omitempty"`
}
