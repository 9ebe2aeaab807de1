package errs

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrNoFilesProvided  = errors.New("no files provided")
	ErrNoImageIDs       = errors.New("no image ids provided")
	ErrMetadataDisabled = errors.New("metadata store disabled")
)
