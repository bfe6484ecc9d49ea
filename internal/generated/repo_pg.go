package generated

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a generated document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO generated_documents (
    id, user_id, source_file_id, strategy, storage_key, mime_type, size_bytes, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.SourceFileID,
		doc.Strategy,
		doc.StorageKey,
		doc.MimeType,
		doc.SizeBytes,
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a generated document by ID scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, docID string) (Document, error) {
	const query = `
SELECT id, user_id, source_file_id, strategy, storage_key, mime_type, size_bytes, created_at
FROM generated_documents
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var doc Document
	err := r.DB.QueryRowContext(ctx, query, docID, userID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.SourceFileID,
		&doc.Strategy,
		&doc.StorageKey,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListBySourceFile lists a user's generated documents for one source file,
// newest first.
func (r *PGRepo) ListBySourceFile(ctx context.Context, userID, fileID string) ([]Document, error) {
	const query = `
SELECT id, user_id, source_file_id, strategy, storage_key, mime_type, size_bytes, created_at
FROM generated_documents
WHERE user_id = $1 AND source_file_id = $2
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.SourceFileID,
			&doc.Strategy,
			&doc.StorageKey,
			&doc.MimeType,
			&doc.SizeBytes,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
