package files

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a file record.
func (r *PGRepo) Create(ctx context.Context, file File) error {
	const query = `
INSERT INTO files (id, user_id, storage_key, name, url, upload_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.Key,
		file.Name,
		file.URL,
		string(file.UploadStatus),
		file.CreatedAt,
	)
	return err
}

// GetByID returns a file by ID scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, fileID string) (File, error) {
	const query = `
SELECT id, user_id, storage_key, name, url, upload_status, created_at
FROM files
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var file File
	var status string
	err := r.DB.QueryRowContext(ctx, query, fileID, userID).Scan(
		&file.ID,
		&file.UserID,
		&file.Key,
		&file.Name,
		&file.URL,
		&status,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	file.UploadStatus = Status(status)
	return file, nil
}

// GetByIDAnyOwner returns a file by ID without owner scoping.
func (r *PGRepo) GetByIDAnyOwner(ctx context.Context, fileID string) (File, error) {
	const query = `
SELECT id, user_id, storage_key, name, url, upload_status, created_at
FROM files
WHERE id = $1
LIMIT 1`
	var file File
	var status string
	err := r.DB.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID,
		&file.UserID,
		&file.Key,
		&file.Name,
		&file.URL,
		&status,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	file.UploadStatus = Status(status)
	return file, nil
}

// GetByKey returns a file by storage key regardless of owner, reporting
// whether one exists. Used by the intake handler for idempotency.
func (r *PGRepo) GetByKey(ctx context.Context, key string) (File, bool, error) {
	const query = `
SELECT id, user_id, storage_key, name, url, upload_status, created_at
FROM files
WHERE storage_key = $1
LIMIT 1`
	var file File
	var status string
	err := r.DB.QueryRowContext(ctx, query, key).Scan(
		&file.ID,
		&file.UserID,
		&file.Key,
		&file.Name,
		&file.URL,
		&status,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	file.UploadStatus = Status(status)
	return file, true, nil
}

// ListByUser lists files ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, storage_key, name, url, upload_status, created_at
FROM files
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var file File
		var status string
		if err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.Key,
			&file.Name,
			&file.URL,
			&status,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		file.UploadStatus = Status(status)
		out = append(out, file)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a record out of PROCESSING. The WHERE clause is
// the monotonicity guard: a record already in a terminal state is untouched.
func (r *PGRepo) UpdateStatus(ctx context.Context, fileID string, status Status) (bool, error) {
	const query = `
UPDATE files
SET upload_status = $2
WHERE id = $1 AND upload_status = $3`
	res, err := r.DB.ExecContext(ctx, query, fileID, string(status), string(StatusProcessing))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a file row scoped to its owner.
func (r *PGRepo) Delete(ctx context.Context, userID, fileID string) error {
	const query = `DELETE FROM files WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, fileID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
