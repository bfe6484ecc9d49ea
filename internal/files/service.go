package files

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/queue"
	"docchat-backend/internal/shared/telemetry"
)

// Ingestor runs the ingestion workflow for a freshly created file record.
type Ingestor interface {
	Run(ctx context.Context, fileID string) error
}

// NamespaceDropper removes a file's partition from the vector index.
type NamespaceDropper interface {
	Drop(ctx context.Context, namespace string) error
}

// Service contains business logic for file records.
type Service struct {
	Repo    Repo
	Ingest  Ingestor
	Queue   queue.Client
	Vectors NamespaceDropper
	Log     *telemetry.Logger
}

// Intake records a completed upload and hands it off to ingestion. It is
// idempotent on the storage key: a second callback for the same key returns
// the existing record untouched. The returned bool reports whether a new
// record was created.
func (s *Service) Intake(ctx context.Context, userID, key, name, url string) (File, bool, error) {
	if userID == "" {
		return File{}, false, ErrInvalidInput
	}
	if key == "" || name == "" || url == "" {
		return File{}, false, ErrInvalidInput
	}

	existing, found, err := s.Repo.GetByKey(ctx, key)
	if err != nil {
		return File{}, false, err
	}
	if found {
		return existing, false, nil
	}

	file := File{
		ID:           uuid.NewString(),
		UserID:       userID,
		Key:          key,
		Name:         name,
		URL:          url,
		UploadStatus: StatusProcessing,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, file); err != nil {
		return File{}, false, err
	}

	s.dispatchIngest(ctx, file.ID)
	return file, true, nil
}

// dispatchIngest hands the file to the ingestion workflow without blocking
// the caller. When a job queue is configured the work goes there so a worker
// fleet can pick it up; otherwise it runs as a detached goroutine.
func (s *Service) dispatchIngest(ctx context.Context, fileID string) {
	requestID := RequestIDFromContext(ctx)

	if s.Queue != nil {
		if err := s.Queue.Send(ctx, queue.NewMessage(fileID, requestID)); err == nil {
			return
		} else if s.Log != nil {
			s.Log.Error("ingest.enqueue.failed", map[string]any{
				"file_id":    fileID,
				"request_id": requestID,
				"err":        err.Error(),
			})
		}
	}

	if s.Ingest == nil {
		if s.Log != nil {
			s.Log.Error("ingest.dispatch.failed", map[string]any{
				"file_id":    fileID,
				"request_id": requestID,
				"err":        "no ingestor configured",
			})
		}
		return
	}

	go func() {
		_ = s.Ingest.Run(BackgroundWithRequestID(ctx), fileID)
	}()
}

// Get returns a file by ID scoped to the caller.
func (s *Service) Get(ctx context.Context, userID, fileID string) (File, error) {
	if userID == "" || fileID == "" {
		return File{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, fileID)
}

// List returns files for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]File, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes a file and drops its vector namespace. The namespace drop
// is best-effort; a dangling namespace is unreachable once the row is gone.
func (s *Service) Delete(ctx context.Context, userID, fileID string) error {
	if userID == "" || fileID == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.Delete(ctx, userID, fileID); err != nil {
		return err
	}
	if s.Vectors != nil {
		if err := s.Vectors.Drop(ctx, fileID); err != nil && s.Log != nil {
			s.Log.Error("files.delete.drop_namespace", map[string]any{
				"file_id": fileID,
				"err":     err.Error(),
			})
		}
	}
	return nil
}
