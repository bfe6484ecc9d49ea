package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docchat-backend/internal/files"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/vectorindex"
)

var (
	// ErrNotFound indicates the file was not found for this user.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady indicates the file has not finished ingesting, so its
	// pages are not searchable yet.
	ErrNotReady = errors.New("file not ready")
)

const answerPrompt = `Answer the user's question using only the provided document excerpts. If the excerpts do not contain the answer, say you don't know. Be concise.

Document excerpts:
%s
Question: %s`

// Service answers questions about an ingested document by retrieving the
// closest pages from the vector index and prompting the completer.
type Service struct {
	Files    files.Repo
	Index    vectorindex.Index
	Embedder llm.Embedder
	Complete llm.Completer
	TopK     int
	Log      *telemetry.Logger
}

// Answer runs retrieval-augmented answering for one question against one
// file. Only files in SUCCESS are searchable.
func (s *Service) Answer(ctx context.Context, userID, fileID, message string) (string, error) {
	if userID == "" || fileID == "" {
		return "", ErrInvalidInput
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	file, err := s.Files.GetByID(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if file.UploadStatus != files.StatusSuccess {
		return "", fmt.Errorf("%w: status=%s", ErrNotReady, file.UploadStatus)
	}

	vectors, err := s.Embedder.EmbedTexts(ctx, []string{message})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return "", errors.New("embed question: no vector returned")
	}

	topK := s.TopK
	if topK <= 0 {
		topK = 4
	}
	matches, err := s.Index.Search(ctx, file.ID, vectors[0], topK)
	if err != nil {
		return "", fmt.Errorf("search pages: %w", err)
	}

	var excerpts strings.Builder
	for _, match := range matches {
		fmt.Fprintf(&excerpts, "[page %d]\n%s\n\n", match.PageNumber, match.Text)
	}

	answer, err := s.Complete.Complete(ctx, fmt.Sprintf(answerPrompt, excerpts.String(), message))
	if err != nil {
		return "", fmt.Errorf("llm answer: %w", err)
	}

	metrics.IncChatMessages()
	s.logger().Info("chat.answered", map[string]any{
		"request_id": files.RequestIDFromContext(ctx),
		"user_id":    userID,
		"file_id":    file.ID,
		"matches":    len(matches),
	})
	return answer, nil
}

func (s *Service) logger() *telemetry.Logger {
	if s.Log != nil {
		return s.Log
	}
	return telemetry.Default()
}
