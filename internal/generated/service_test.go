package generated

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"docchat-backend/internal/files"
)

type fakeGenerator struct {
	err   error
	calls int
	last  Input
}

func (g *fakeGenerator) Generate(ctx context.Context, in Input) ([]byte, error) {
	g.calls++
	g.last = in
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.4 fake " + in.Text), nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userId, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userId + "/" + fileName
	s.mu.Lock()
	s.saved[key] = data
	s.mu.Unlock()
	return key, int64(len(data)), "application/pdf", nil
}

func (s *fakeStore) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.saved[storageKey] = data
	s.mu.Unlock()
	return int64(len(data)), nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[storageKey]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func seedSource(t *testing.T, repo *files.MemoryRepo, id, userID, name string, status files.Status) files.File {
	t.Helper()
	file := files.File{
		ID:           id,
		UserID:       userID,
		Key:          "docs/" + userID + "/" + name,
		Name:         name,
		URL:          "https://cdn.example/" + name,
		UploadStatus: status,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), file); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return file
}

func newTestService(t *testing.T) (*Service, *files.MemoryRepo, *fakeStore, *fakeGenerator) {
	t.Helper()
	filesRepo := files.NewMemoryRepo()
	store := newFakeStore()
	gen := &fakeGenerator{}
	svc := &Service{
		Repo:     NewMemoryRepo(),
		Files:    filesRepo,
		Store:    store,
		Generate: gen,
		Strategy: StrategyDirect,
	}
	return svc, filesRepo, store, gen
}

func TestCreatePersistsRecordAndBytes(t *testing.T) {
	svc, filesRepo, store, gen := newTestService(t)
	source := seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)

	doc, err := svc.Create(context.Background(), "user-1", source.ID, "rendered body", "https://ref.example")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if doc.ID == "" {
		t.Fatal("expected an id")
	}
	if doc.SourceFileID != source.ID {
		t.Fatalf("expected source %s, got %s", source.ID, doc.SourceFileID)
	}
	if doc.MimeType != "application/pdf" {
		t.Fatalf("unexpected mime type %s", doc.MimeType)
	}
	if gen.last.OriginalURL != source.URL || gen.last.URL != "https://ref.example" {
		t.Fatalf("generator input not wired: %+v", gen.last)
	}

	stored, err := svc.Repo.GetByID(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("record lookup: %v", err)
	}
	data, ok := store.saved[stored.StorageKey]
	if !ok {
		t.Fatalf("expected bytes at %s", stored.StorageKey)
	}
	if stored.SizeBytes != int64(len(data)) {
		t.Fatalf("size mismatch: record %d, stored %d", stored.SizeBytes, len(data))
	}
	if !strings.HasSuffix(stored.StorageKey, "report_generated.pdf") {
		t.Fatalf("unexpected storage key %s", stored.StorageKey)
	}
}

func TestCreateOtherOwnerReportsNotFound(t *testing.T) {
	svc, filesRepo, _, gen := newTestService(t)
	seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)

	if _, err := svc.Create(context.Background(), "user-2", "file-1", "body", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not run for another user's file")
	}
}

func TestCreateRequiresText(t *testing.T) {
	svc, filesRepo, _, _ := newTestService(t)
	seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)

	if _, err := svc.Create(context.Background(), "user-1", "file-1", "   ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateGeneratorFailurePersistsNothing(t *testing.T) {
	svc, filesRepo, store, gen := newTestService(t)
	seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)
	gen.err = errors.New("model unavailable")

	if _, err := svc.Create(context.Background(), "user-1", "file-1", "body", ""); err == nil {
		t.Fatal("expected error")
	}
	if len(store.saved) != 0 {
		t.Fatalf("expected no bytes persisted, got %d objects", len(store.saved))
	}
}

func TestGetPairReturnsBothRecords(t *testing.T) {
	svc, filesRepo, _, _ := newTestService(t)
	source := seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)
	doc, err := svc.Create(context.Background(), "user-1", source.ID, "body", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	gotFile, gotDoc, err := svc.GetPair(context.Background(), "user-1", source.ID, doc.ID)
	if err != nil {
		t.Fatalf("get pair: %v", err)
	}
	if gotFile.ID != source.ID || gotDoc.ID != doc.ID {
		t.Fatalf("unexpected pair: file=%s doc=%s", gotFile.ID, gotDoc.ID)
	}
}

func TestGetPairMismatchedSourceReportsNotFound(t *testing.T) {
	svc, filesRepo, _, _ := newTestService(t)
	source := seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)
	other := seedSource(t, filesRepo, "file-2", "user-1", "other.pdf", files.StatusSuccess)
	doc, err := svc.Create(context.Background(), "user-1", source.ID, "body", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The generated document belongs to file-1, not file-2.
	if _, _, err := svc.GetPair(context.Background(), "user-1", other.ID, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPairOtherOwnerReportsNotFound(t *testing.T) {
	svc, filesRepo, _, _ := newTestService(t)
	source := seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)
	doc, err := svc.Create(context.Background(), "user-1", source.ID, "body", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.GetPair(context.Background(), "user-2", source.ID, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenContentStreamsStoredBytes(t *testing.T) {
	svc, filesRepo, _, _ := newTestService(t)
	source := seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)
	doc, err := svc.Create(context.Background(), "user-1", source.ID, "body", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reader, gotDoc, err := svc.OpenContent(context.Background(), "user-1", source.ID, doc.ID)
	if err != nil {
		t.Fatalf("open content: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if gotDoc.ID != doc.ID || int64(len(data)) != doc.SizeBytes {
		t.Fatalf("unexpected content: id=%s size=%d want=%d", gotDoc.ID, len(data), doc.SizeBytes)
	}
}

func TestOpenContentMismatchedSourceReportsNotFound(t *testing.T) {
	svc, filesRepo, _, _ := newTestService(t)
	source := seedSource(t, filesRepo, "file-1", "user-1", "report.pdf", files.StatusSuccess)
	other := seedSource(t, filesRepo, "file-2", "user-1", "other.pdf", files.StatusSuccess)
	doc, err := svc.Create(context.Background(), "user-1", source.ID, "body", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.OpenContent(context.Background(), "user-1", other.ID, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGeneratedFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report_generated.pdf"},
		{"report", "report_generated.pdf"},
		{"", "document_generated.pdf"},
		{"  .pdf", "document_generated.pdf"},
	}
	for _, tc := range cases {
		if got := generatedFileName(tc.in); got != tc.want {
			t.Fatalf("generatedFileName(%q): want %q, got %q", tc.in, tc.want, got)
		}
	}
}
