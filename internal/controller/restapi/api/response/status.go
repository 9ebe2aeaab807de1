package response

type ProcessingStatus struct {
	Success          bool    `json:"success"`
	ImageID          string  `json:"image_id"`
	ProcessingStatus string  `json:"processing_status"`
	ProcessedAt      *string `json:"processed_at"`
	UploadTime       *string `json:"upload_time"`
	HasResults       bool    `json:"has_results"`
}

type BatchStatusEntry struct {
	ProcessingStatus string  `json:"processing_status"`
	ProcessedAt      *string `json:"processed_at"`
	HasResults       bool    `json:"has_results"`
}

type BatchStatus struct {
	Success  bool                        `json:"success"`
	Statuses map[string]BatchStatusEntry `json:"statuses"`
}
