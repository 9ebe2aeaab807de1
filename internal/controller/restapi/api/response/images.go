package response

import "github.com/google/uuid"

type ImageInfo struct {
	FileName         string     `json:"fileName"`
	OriginalName     string     `json:"originalName"`
	UploadTime       *string    `json:"uploadTime"`
	Size             *int64     `json:"size"`
	URL              string     `json:"url"`
	Analysis         Analysis   `json:"analysis"`
	ProcessingStatus string     `json:"processing_status"`
	ProcessedAt      *string    `json:"processed_at,omitempty"`
	ImageID          *uuid.UUID `json:"imageId,omitempty"`
}

type Images struct {
	Success        bool        `json:"success"`
	Images         []ImageInfo `json:"images"`
	Source         string      `json:"source"`
	ProcessingMode string      `json:"processing_mode,omitempty"`
	Count          int         `json:"count"`
	Message        string      `json:"message,omitempty"`
	Error          string      `json:"error,omitempty"`
}

type ImageURL struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	S3Key   string `json:"s3_key"`
	Bucket  string `json:"bucket"`
}
