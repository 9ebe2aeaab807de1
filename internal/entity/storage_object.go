package entity

import "time"

// StorageObject is a raw listing entry from object storage, used by the
// fallback read path when the metadata store cannot be queried.
type StorageObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}
