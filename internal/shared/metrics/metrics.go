package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ingestStartedTotal             atomic.Uint64
	ingestSucceededTotal           atomic.Uint64
	ingestFailedTotal              atomic.Uint64
	ingestJobsReceived             atomic.Uint64
	ingestJobsCompleted            atomic.Uint64
	ingestJobsFailed               atomic.Uint64
	ingestJobsDeletedUnrecoverable atomic.Uint64
	regenerationTotal              atomic.Uint64
	chatMessagesTotal              atomic.Uint64

	ingestDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncIngestStarted increments the ingestion-started counter.
func IncIngestStarted() {
	ingestStartedTotal.Add(1)
}

// IncIngestSucceeded increments the ingestion-succeeded counter.
func IncIngestSucceeded() {
	ingestSucceededTotal.Add(1)
}

// IncIngestFailed increments the ingestion-failed counter.
func IncIngestFailed() {
	ingestFailedTotal.Add(1)
}

// IncIngestJobsReceived increments the queue-jobs-received counter.
func IncIngestJobsReceived() {
	ingestJobsReceived.Add(1)
}

// IncIngestJobsCompleted increments the queue-jobs-completed counter.
func IncIngestJobsCompleted() {
	ingestJobsCompleted.Add(1)
}

// IncIngestJobsFailed increments the queue-jobs-failed counter.
func IncIngestJobsFailed() {
	ingestJobsFailed.Add(1)
}

// IncIngestJobsDeletedUnrecoverable increments the counter of jobs deleted
// without processing because their payloads could never succeed.
func IncIngestJobsDeletedUnrecoverable() {
	ingestJobsDeletedUnrecoverable.Add(1)
}

// IncRegeneration increments the regeneration counter.
func IncRegeneration() {
	regenerationTotal.Add(1)
}

// IncChatMessages increments the chat-message counter.
func IncChatMessages() {
	chatMessagesTotal.Add(1)
}

// ObserveIngestDurationMs records an ingestion duration in milliseconds.
func ObserveIngestDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	ingestDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "ingest_started_total", "Total ingestions started", ingestStartedTotal.Load())
	writeCounter(&buf, "ingest_succeeded_total", "Total ingestions succeeded", ingestSucceededTotal.Load())
	writeCounter(&buf, "ingest_failed_total", "Total ingestions failed", ingestFailedTotal.Load())
	writeCounter(&buf, "ingest_jobs_received_total", "Total ingest queue jobs received", ingestJobsReceived.Load())
	writeCounter(&buf, "ingest_jobs_completed_total", "Total ingest queue jobs completed", ingestJobsCompleted.Load())
	writeCounter(&buf, "ingest_jobs_failed_total", "Total ingest queue jobs failed", ingestJobsFailed.Load())
	writeCounter(&buf, "ingest_jobs_deleted_unrecoverable_total", "Total ingest queue jobs deleted as unrecoverable", ingestJobsDeletedUnrecoverable.Load())
	writeCounter(&buf, "regeneration_total", "Total document regenerations", regenerationTotal.Load())
	writeCounter(&buf, "chat_messages_total", "Total chat messages answered", chatMessagesTotal.Load())
	writeHistogram(&buf, "ingest_duration_ms", "Ingestion duration in milliseconds", ingestDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
