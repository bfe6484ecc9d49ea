package generated

import "time"

// Document represents a stored PDF regenerated from an uploaded file's
// extracted text.
type Document struct {
	ID           string
	UserID       string
	SourceFileID string
	Strategy     string
	StorageKey   string
	MimeType     string
	SizeBytes    int64
	CreatedAt    time.Time
}
