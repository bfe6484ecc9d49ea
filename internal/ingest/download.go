package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDownloadBytes caps how much of a source document we are willing to
// pull into memory. Page extraction needs the whole file, so this is the
// effective size ceiling for ingested PDFs.
const maxDownloadBytes = 64 << 20

// Downloader fetches the original document bytes from its source URL.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader fetches documents over HTTP(S).
type HTTPDownloader struct {
	Client *http.Client
}

// NewHTTPDownloader constructs an HTTPDownloader with a bounded timeout.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{Client: &http.Client{Timeout: 60 * time.Second}}
}

// Fetch downloads the document at url. Any non-2xx response is an error.
func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download read: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("download: document exceeds %d bytes", maxDownloadBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download: empty body")
	}
	return data, nil
}

var _ Downloader = (*HTTPDownloader)(nil)
