package files

import "context"

// Repo defines persistence operations for file records.
//
// GetByID is scoped by owner: a file owned by another user is reported as
// ErrNotFound, never as a distinct condition.
type Repo interface {
	Create(ctx context.Context, file File) error
	GetByID(ctx context.Context, userID, fileID string) (File, error)

	// GetByIDAnyOwner returns a file by ID without owner scoping. It is
	// for internal workflows acting on the system's behalf, never for
	// request handlers.
	GetByIDAnyOwner(ctx context.Context, fileID string) (File, error)
	GetByKey(ctx context.Context, key string) (File, bool, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error)

	// UpdateStatus transitions a record to the given status and reports
	// whether the transition applied. It only applies while the current
	// status is PROCESSING, which keeps the status monotonic per attempt.
	UpdateStatus(ctx context.Context, fileID string, status Status) (bool, error)

	Delete(ctx context.Context, userID, fileID string) error
}
