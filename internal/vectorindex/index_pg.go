package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
)

// PGIndex implements Index on Postgres with the pgvector extension.
type PGIndex struct {
	DB *sql.DB
}

// Upsert writes all entries for a namespace in one transaction. Re-running
// an upsert for the same pages overwrites them in place.
func (x *PGIndex) Upsert(ctx context.Context, namespace string, entries []Entry) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := x.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	const query = `
INSERT INTO file_pages (namespace, page_number, content, embedding)
VALUES ($1, $2, $3, $4::vector)
ON CONFLICT (namespace, page_number)
DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query,
			namespace,
			entry.PageNumber,
			entry.Text,
			ToLiteral(entry.Embedding),
		); err != nil {
			return fmt.Errorf("upsert page %d namespace=%s: %w", entry.PageNumber, namespace, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// Search returns the topK pages of a namespace closest to the query vector
// by cosine distance.
func (x *PGIndex) Search(ctx context.Context, namespace string, query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 4
	}

	const q = `
SELECT page_number,
       content,
       1 - (embedding <=> $2::vector) AS score
FROM file_pages
WHERE namespace = $1
ORDER BY embedding <=> $2::vector
LIMIT $3`

	rows, err := x.DB.QueryContext(ctx, q, namespace, ToLiteral(query), topK)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	results := make([]Match, 0, topK)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.PageNumber, &m.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return results, nil
}

// Drop removes every page in a namespace.
func (x *PGIndex) Drop(ctx context.Context, namespace string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if _, err := x.DB.ExecContext(ctx, `DELETE FROM file_pages WHERE namespace = $1`, namespace); err != nil {
		return fmt.Errorf("drop namespace %s: %w", namespace, err)
	}
	return nil
}

var _ Index = (*PGIndex)(nil)
