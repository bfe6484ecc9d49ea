package files

import "time"

// Status is the ingestion state of an uploaded or generated file.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether no further processing may occur for this status.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// File represents one uploaded or generated document owned by a user.
type File struct {
	ID           string
	UserID       string
	Key          string
	Name         string
	URL          string
	UploadStatus Status
	CreatedAt    time.Time
}
