package dto

import (
	"io"
	"time"

	"github.com/google/uuid"

	"visionapi/internal/entity"
)

// FileUpload is one multipart payload handed to the upload use-case.
// Data may be nil when the handler failed to open the part; the
// use-case turns that into a failed per-file result.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

const (
	UploadStatusUploaded = "uploaded"
	UploadStatusFailed   = "failed"
)

// UploadResult is the per-file outcome, in request order. ImageID stays
// nil when the metadata store was unavailable (degraded upload).
type UploadResult struct {
	Key              string
	OriginalName     string
	Bucket           string
	Status           string
	ProcessingStatus entity.Status
	ImageID          *uuid.UUID
	Size             int64
	UploadTime       time.Time
	Error            string
}
