package files

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docchat-backend/internal/queue"
)

type recordingIngestor struct {
	mu   sync.Mutex
	runs []string
	done chan struct{}
}

func newRecordingIngestor() *recordingIngestor {
	return &recordingIngestor{done: make(chan struct{}, 8)}
}

func (r *recordingIngestor) Run(ctx context.Context, fileID string) error {
	r.mu.Lock()
	r.runs = append(r.runs, fileID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingIngestor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func (r *recordingIngestor) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ingest dispatch")
	}
}

type recordingQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *recordingQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

type recordingDropper struct {
	mu      sync.Mutex
	dropped []string
}

func (d *recordingDropper) Drop(ctx context.Context, namespace string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropped = append(d.dropped, namespace)
	return nil
}

func TestIntakeCreatesProcessingRecordAndDispatches(t *testing.T) {
	repo := NewMemoryRepo()
	ing := newRecordingIngestor()
	svc := &Service{Repo: repo, Ingest: ing}

	file, created, err := svc.Intake(context.Background(), "user-1", "docs/u1/a.pdf", "a.pdf", "https://cdn.example/a.pdf")
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a new key")
	}
	if file.UploadStatus != StatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", file.UploadStatus)
	}

	ing.wait(t)
	if got := ing.count(); got != 1 {
		t.Fatalf("expected 1 ingest run, got %d", got)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", file.ID)
	if err != nil {
		t.Fatalf("stored record lookup: %v", err)
	}
	if stored.Key != "docs/u1/a.pdf" {
		t.Fatalf("unexpected key: %s", stored.Key)
	}
}

func TestIntakeIsIdempotentOnKey(t *testing.T) {
	repo := NewMemoryRepo()
	ing := newRecordingIngestor()
	svc := &Service{Repo: repo, Ingest: ing}

	first, created, err := svc.Intake(context.Background(), "user-1", "docs/u1/a.pdf", "a.pdf", "https://cdn.example/a.pdf")
	if err != nil || !created {
		t.Fatalf("first intake: created=%t err=%v", created, err)
	}
	ing.wait(t)

	second, created, err := svc.Intake(context.Background(), "user-1", "docs/u1/a.pdf", "a.pdf", "https://cdn.example/a.pdf")
	if err != nil {
		t.Fatalf("second intake: %v", err)
	}
	if created {
		t.Fatal("expected created=false for a duplicate key")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing record %s, got %s", first.ID, second.ID)
	}
	if got := ing.count(); got != 1 {
		t.Fatalf("duplicate intake must not re-dispatch ingestion, got %d runs", got)
	}
}

func TestIntakeValidatesInput(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	cases := []struct {
		name string
		user string
		key  string
		file string
		url  string
	}{
		{"missing user", "", "k", "n", "u"},
		{"missing key", "user-1", "", "n", "u"},
		{"missing name", "user-1", "k", "", "u"},
		{"missing url", "user-1", "k", "n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Intake(context.Background(), tc.user, tc.key, tc.file, tc.url)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIntakePrefersQueueOverGoroutine(t *testing.T) {
	repo := NewMemoryRepo()
	ing := newRecordingIngestor()
	q := &recordingQueue{}
	svc := &Service{Repo: repo, Ingest: ing, Queue: q}

	ctx := WithRequestID(context.Background(), "req-42")
	file, _, err := svc.Intake(ctx, "user-1", "docs/u1/a.pdf", "a.pdf", "https://cdn.example/a.pdf")
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.sent) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(q.sent))
	}
	msg := q.sent[0]
	if msg.FileID != file.ID {
		t.Fatalf("queued wrong file: %s", msg.FileID)
	}
	if msg.RequestID != "req-42" {
		t.Fatalf("expected request id propagated, got %q", msg.RequestID)
	}
	if got := ing.count(); got != 0 {
		t.Fatalf("queue dispatch must not also run in-process, got %d runs", got)
	}
}

func TestIntakeFallsBackToGoroutineOnQueueError(t *testing.T) {
	repo := NewMemoryRepo()
	ing := newRecordingIngestor()
	q := &recordingQueue{err: errors.New("sqs unavailable")}
	svc := &Service{Repo: repo, Ingest: ing, Queue: q}

	if _, _, err := svc.Intake(context.Background(), "user-1", "docs/u1/a.pdf", "a.pdf", "https://cdn.example/a.pdf"); err != nil {
		t.Fatalf("intake: %v", err)
	}
	ing.wait(t)
	if got := ing.count(); got != 1 {
		t.Fatalf("expected in-process fallback run, got %d", got)
	}
}

func TestDeleteDropsVectorNamespace(t *testing.T) {
	repo := NewMemoryRepo()
	dropper := &recordingDropper{}
	svc := &Service{Repo: repo, Vectors: dropper}

	file := File{ID: "file-1", UserID: "user-1", Key: "k", Name: "n", URL: "u", UploadStatus: StatusSuccess, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), file); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", "file-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	dropper.mu.Lock()
	defer dropper.mu.Unlock()
	if len(dropper.dropped) != 1 || dropper.dropped[0] != "file-1" {
		t.Fatalf("expected namespace file-1 dropped, got %v", dropper.dropped)
	}
}

func TestDeleteOtherOwnerReportsNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	file := File{ID: "file-1", UserID: "user-1", Key: "k", Name: "n", URL: "u", UploadStatus: StatusSuccess, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), file); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-2", "file-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
