package generated

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/files"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
)

// Service contains business logic for document regeneration and the
// source/generated pair view.
type Service struct {
	Repo     Repo
	Files    files.Repo
	Store    object.ObjectStore
	Generate Generator
	Strategy string
	Log      *telemetry.Logger
}

// Create regenerates a PDF for the given source file and persists both the
// bytes and a record pointing at them. The source lookup is owner-scoped,
// so another user's file reports as ErrNotFound.
func (s *Service) Create(ctx context.Context, userID, fileID, text, url string) (Document, error) {
	if userID == "" || fileID == "" {
		return Document{}, ErrInvalidInput
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if s.Repo == nil || s.Files == nil || s.Store == nil || s.Generate == nil {
		return Document{}, errors.New("missing dependencies")
	}

	source, err := s.Files.GetByID(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	pdfBytes, err := s.Generate.Generate(ctx, Input{
		OriginalURL: source.URL,
		Text:        text,
		URL:         url,
	})
	if err != nil {
		return Document{}, err
	}

	fileName := generatedFileName(source.Name)
	storageKey, size, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(pdfBytes))
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:           uuid.NewString(),
		UserID:       userID,
		SourceFileID: source.ID,
		Strategy:     s.Strategy,
		StorageKey:   storageKey,
		MimeType:     "application/pdf",
		SizeBytes:    size,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	metrics.IncRegeneration()
	s.logger().Info("generated.created", map[string]any{
		"request_id":   files.RequestIDFromContext(ctx),
		"user_id":      userID,
		"file_id":      source.ID,
		"generated_id": doc.ID,
		"strategy":     doc.Strategy,
		"size_bytes":   doc.SizeBytes,
	})
	return doc, nil
}

// GetPair returns the source file and a generated document together. Both
// lookups are scoped to the owner; a mismatch between the generated
// document and the named source file reports as ErrNotFound.
func (s *Service) GetPair(ctx context.Context, userID, fileID, docID string) (files.File, Document, error) {
	if userID == "" || fileID == "" || docID == "" {
		return files.File{}, Document{}, ErrInvalidInput
	}

	source, err := s.Files.GetByID(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return files.File{}, Document{}, ErrNotFound
		}
		return files.File{}, Document{}, err
	}

	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return files.File{}, Document{}, err
	}
	if doc.SourceFileID != source.ID {
		return files.File{}, Document{}, ErrNotFound
	}
	return source, doc, nil
}

// OpenContent streams the stored PDF bytes of a generated document. The
// lookup is owner-scoped and the document must belong to the named source
// file, matching GetPair.
func (s *Service) OpenContent(ctx context.Context, userID, fileID, docID string) (io.ReadCloser, Document, error) {
	if userID == "" || fileID == "" || docID == "" {
		return nil, Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, Document{}, err
	}
	if doc.SourceFileID != fileID {
		return nil, Document{}, ErrNotFound
	}
	reader, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, Document{}, err
	}
	return reader, doc, nil
}

func (s *Service) logger() *telemetry.Logger {
	if s.Log != nil {
		return s.Log
	}
	return telemetry.Default()
}

func generatedFileName(sourceName string) string {
	base := strings.TrimSuffix(sourceName, ".pdf")
	base = strings.TrimSpace(base)
	if base == "" {
		base = "document"
	}
	return base + "_generated.pdf"
}
