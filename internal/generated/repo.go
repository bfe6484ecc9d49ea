package generated

import "context"

// Repo defines persistence operations for generated documents. Lookups
// are scoped by owner: another user's document reports as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, docID string) (Document, error)
	ListBySourceFile(ctx context.Context, userID, fileID string) ([]Document, error)
}
