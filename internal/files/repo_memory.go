package files

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores file records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]File
	byKey map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]File),
		byKey: make(map[string]string),
	}
}

// Create stores the file record.
func (r *MemoryRepo) Create(ctx context.Context, file File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[file.ID] = file
	r.byKey[file.Key] = file.ID
	return nil
}

// GetByID returns a file by ID scoped to its owner.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, fileID string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.byID[fileID]
	if !ok || file.UserID != userID {
		return File{}, ErrNotFound
	}
	return file, nil
}

// GetByIDAnyOwner returns a file by ID without owner scoping.
func (r *MemoryRepo) GetByIDAnyOwner(ctx context.Context, fileID string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.byID[fileID]
	if !ok {
		return File{}, ErrNotFound
	}
	return file, nil
}

// GetByKey returns a file by storage key, reporting whether one exists.
func (r *MemoryRepo) GetByKey(ctx context.Context, key string) (File, bool, error) {
	if err := ctx.Err(); err != nil {
		return File{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[key]
	if !ok {
		return File{}, false, nil
	}
	file, ok := r.byID[id]
	if !ok {
		return File{}, false, nil
	}
	return file, true, nil
}

// ListByUser returns files for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var out []File
	for _, file := range r.byID {
		if file.UserID == userID {
			out = append(out, file)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []File{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// UpdateStatus transitions a record out of PROCESSING, reporting whether the
// transition applied. Terminal records are untouched.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, fileID string, status Status) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.byID[fileID]
	if !ok || file.UploadStatus != StatusProcessing {
		return false, nil
	}
	file.UploadStatus = status
	r.byID[fileID] = file
	return true, nil
}

// Delete removes a file row scoped to its owner.
func (r *MemoryRepo) Delete(ctx context.Context, userID, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.byID[fileID]
	if !ok || file.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, fileID)
	delete(r.byKey, file.Key)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
