package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/files"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/plans"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/vectorindex"
)

// ErrPlanLimitExceeded marks a document rejected for exceeding the page
// ceiling of the owner's plan.
var ErrPlanLimitExceeded = errors.New("page count exceeds plan limit")

// Service runs the ingestion workflow for uploaded documents: download,
// page extraction, plan-limit enforcement, durable re-upload, embedding,
// and vector indexing. Every run ends with the file record in a terminal
// state.
type Service struct {
	Repo     files.Repo
	Download Downloader
	Plans    plans.Resolver
	Tiers    plans.Table
	Store    object.ObjectStore
	Embedder llm.Embedder
	Index    vectorindex.Index
	Log      *telemetry.Logger
}

// Run ingests the file with the given ID. Domain failures (bad document,
// plan limit, embedding errors) are absorbed: the record is flipped to
// FAILED, the failure is logged, and Run returns nil so queue deliveries
// are not retried against a terminal record. An error is returned only
// when the record itself could not be loaded.
func (s *Service) Run(ctx context.Context, fileID string) error {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, fileID, "", "panic", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	startedAt := time.Now().UTC()

	file, err := s.Repo.GetByIDAnyOwner(ctx, fileID)
	if err != nil {
		return fmt.Errorf("file lookup id=%s: %w", fileID, err)
	}
	if file.UploadStatus.Terminal() {
		s.logger().Info("ingest.skip", map[string]any{
			"request_id": files.RequestIDFromContext(ctx),
			"file_id":    file.ID,
			"status":     string(file.UploadStatus),
		})
		return nil
	}

	metrics.IncIngestStarted()
	s.logger().Info("ingest.status", map[string]any{
		"request_id": files.RequestIDFromContext(ctx),
		"user_id":    file.UserID,
		"file_id":    file.ID,
		"status":     string(files.StatusProcessing),
		"step":       "start",
	})

	data, err := s.Download.Fetch(ctx, file.URL)
	if err != nil {
		s.fail(ctx, file.ID, file.UserID, "download", err, &startedAt)
		return nil
	}

	pages, err := extract.Pages(ctx, data)
	if err != nil {
		s.fail(ctx, file.ID, file.UserID, "extract", err, &startedAt)
		return nil
	}
	if len(pages) == 0 {
		s.fail(ctx, file.ID, file.UserID, "extract", errors.New("document has no pages"), &startedAt)
		return nil
	}

	if err := s.checkPlanLimit(ctx, file.UserID, len(pages)); err != nil {
		s.fail(ctx, file.ID, file.UserID, "plan_check", err, &startedAt)
		return nil
	}

	if _, err := s.Store.SaveWithKey(ctx, file.Key, "application/pdf", bytes.NewReader(data)); err != nil {
		s.fail(ctx, file.ID, file.UserID, "store", err, &startedAt)
		return nil
	}

	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.Text
	}
	vectors, err := s.Embedder.EmbedTexts(ctx, texts)
	if err != nil {
		s.fail(ctx, file.ID, file.UserID, "embed", err, &startedAt)
		return nil
	}
	if len(vectors) != len(pages) {
		s.fail(ctx, file.ID, file.UserID, "embed",
			fmt.Errorf("embedding count mismatch: %d vectors for %d pages", len(vectors), len(pages)), &startedAt)
		return nil
	}

	entries := make([]vectorindex.Entry, len(pages))
	for i, page := range pages {
		entries[i] = vectorindex.Entry{
			PageNumber: page.Number,
			Text:       page.Text,
			Embedding:  vectors[i],
		}
	}
	if err := s.Index.Upsert(ctx, file.ID, entries); err != nil {
		s.fail(ctx, file.ID, file.UserID, "index", err, &startedAt)
		return nil
	}

	applied, err := s.Repo.UpdateStatus(ctx, file.ID, files.StatusSuccess)
	if err != nil {
		s.fail(ctx, file.ID, file.UserID, "finalize", err, &startedAt)
		return nil
	}

	completedAt := time.Now().UTC()
	metrics.IncIngestSucceeded()
	metrics.ObserveIngestDurationMs(durationMs(&startedAt, &completedAt))
	fields := map[string]any{
		"request_id":  files.RequestIDFromContext(ctx),
		"user_id":     file.UserID,
		"file_id":     file.ID,
		"status":      string(files.StatusSuccess),
		"applied":     applied,
		"pages":       len(pages),
		"duration_ms": durationMs(&startedAt, &completedAt),
	}
	if applied {
		fields["status_transition"] = "PROCESSING->SUCCESS"
	}
	s.logger().Info("ingest.status", fields)
	return nil
}

// checkPlanLimit resolves the owner's subscription and rejects the
// document when its page count exceeds the ceiling of the plan actually
// in force: the Pro ceiling for subscribed users, the Free ceiling for
// everyone else.
func (s *Service) checkPlanLimit(ctx context.Context, userID string, pageCount int) error {
	sub, err := s.Plans.Resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve subscription: %w", err)
	}

	freeCeil, ok := s.Tiers.Ceiling(plans.TierFree)
	if !ok {
		return errors.New("free tier not configured")
	}
	proCeil, ok := s.Tiers.Ceiling(plans.TierPro)
	if !ok {
		return errors.New("pro tier not configured")
	}

	if (sub.IsSubscribed && pageCount > proCeil) || (!sub.IsSubscribed && pageCount > freeCeil) {
		return fmt.Errorf("%w: %d pages, plan=%s subscribed=%t", ErrPlanLimitExceeded, pageCount, sub.Plan, sub.IsSubscribed)
	}
	return nil
}

// fail flips the record to FAILED and logs the failure. The status write
// uses a fresh context so a canceled request context cannot strand the
// record in PROCESSING.
func (s *Service) fail(ctx context.Context, fileID, userID, step string, err error, startedAt *time.Time) {
	updateCtx := ctx
	if ctx.Err() != nil {
		updateCtx = files.BackgroundWithRequestID(ctx)
	}
	applied, updateErr := s.Repo.UpdateStatus(updateCtx, fileID, files.StatusFailed)
	if updateErr != nil {
		s.logger().Error("ingest.fail_update", map[string]any{
			"request_id": files.RequestIDFromContext(ctx),
			"file_id":    fileID,
			"error":      updateErr.Error(),
		})
	}

	completedAt := time.Now().UTC()
	metrics.IncIngestFailed()
	if startedAt != nil {
		metrics.ObserveIngestDurationMs(durationMs(startedAt, &completedAt))
	}
	fields := map[string]any{
		"request_id":  files.RequestIDFromContext(ctx),
		"user_id":     userID,
		"file_id":     fileID,
		"status":      string(files.StatusFailed),
		"applied":     applied,
		"step":        step,
		"error":       err.Error(),
		"duration_ms": durationMs(startedAt, &completedAt),
	}
	if applied {
		fields["status_transition"] = "PROCESSING->FAILED"
	}
	s.logger().Error("ingest.status", fields)
}

func (s *Service) logger() *telemetry.Logger {
	if s.Log != nil {
		return s.Log
	}
	return telemetry.Default()
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}
