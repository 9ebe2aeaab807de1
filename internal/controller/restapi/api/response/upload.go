package response

import "github.com/google/uuid"

type UploadedFile struct {
	FileName         string     `json:"fileName"`
	OriginalName     string     `json:"originalName,omitempty"`
	S3Key            string     `json:"s3Key,omitempty"`
	Bucket           string     `json:"bucket,omitempty"`
	Status           string     `json:"status"`
	ProcessingStatus string     `json:"processing_status,omitempty"`
	Message          string     `json:"message,omitempty"`
	UploadTime       string     `json:"uploadTime,omitempty"`
	ImageID          *uuid.UUID `json:"imageId,omitempty"`
	FileSize         int64      `json:"fileSize,omitempty"`
	Analysis         *Analysis  `json:"analysis,omitempty"`
	Error            string     `json:"error,omitempty"`
}

type Upload struct {
	Success         bool           `json:"success"`
	Files           []UploadedFile `json:"files"`
	Bucket          string         `json:"bucket"`
	DatabaseEnabled bool           `json:"database_enabled"`
	ProcessingMode  string         `json:"processing_mode"`
	Message         string         `json:"message"`
}
