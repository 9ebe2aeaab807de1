package entity

// Status is the lifecycle marker on an image record: whether the
// external analysis worker has picked it up yet. The same values drive
// outbox event rows.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Completed  Status = "completed"
	Failed     Status = "failed"
	Unknown    Status = "unknown"
)
