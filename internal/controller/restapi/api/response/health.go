package response

type Component struct {
	Status    string `json:"status"`
	Bucket    string `json:"bucket,omitempty"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

type Health struct {
	Status         string               `json:"status"`
	Timestamp      string               `json:"timestamp"`
	ProcessingMode string               `json:"processing_mode"`
	Components     map[string]Component `json:"components"`
}

type Infrastructure struct {
	Overall        string               `json:"overall"`
	Timestamp      string               `json:"timestamp"`
	ProcessingMode string               `json:"processing_mode"`
	Services       map[string]Component `json:"services"`
}

type Config struct {
	Bucket          string          `json:"bucket"`
	Region          string          `json:"region"`
	DatabaseEnabled bool            `json:"database_enabled"`
	ProcessingMode  string          `json:"processing_mode"`
	Features        map[string]bool `json:"features"`
}
