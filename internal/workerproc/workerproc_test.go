package workerproc

import (
	"context"
	"errors"
	"testing"

	"docchat-backend/internal/files"
	"docchat-backend/internal/queue"
)

type fakeProcessor struct {
	err        error
	calls      int
	lastFileID string
	lastReqID  string
}

func (p *fakeProcessor) Run(ctx context.Context, fileID string) error {
	p.calls++
	p.lastFileID = fileID
	p.lastReqID = files.RequestIDFromContext(ctx)
	return p.err
}

func TestParseMessage(t *testing.T) {
	msg, meta, err := ParseMessage(`{"fileId":"file-1","requestId":"req-1","version":1}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.FileID != "file-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if meta.BodyLen == 0 || meta.BodySHA == "" {
		t.Fatalf("expected meta populated, got %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	var emptyErr ErrEmptyBody
	if _, _, err := ParseMessage("   "); !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageBadJSON(t *testing.T) {
	var decodeErr ErrDecode
	if _, _, err := ParseMessage("not json"); !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestParseMessageMissingFileID(t *testing.T) {
	var missingErr ErrMissingFileID
	_, _, err := ParseMessage(`{"requestId":"req-1"}`)
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected ErrMissingFileID, got %v", err)
	}
	if missingErr.RequestID != "req-1" {
		t.Fatalf("expected request id carried, got %+v", missingErr)
	}
}

func TestHandleMessageRunsProcessor(t *testing.T) {
	proc := &fakeProcessor{}
	body := `{"fileId":"file-1","requestId":"req-1","version":1}`

	if err := HandleMessage(context.Background(), proc, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proc.calls != 1 || proc.lastFileID != "file-1" {
		t.Fatalf("processor not invoked as expected: %+v", proc)
	}
	if proc.lastReqID != "req-1" {
		t.Fatalf("request id not propagated, got %q", proc.lastReqID)
	}
}

func TestHandleMessageReusesParsedMessage(t *testing.T) {
	proc := &fakeProcessor{}
	ctx := WithParsedMessage(context.Background(), queue.Message{FileID: "file-2", RequestID: "req-2"})

	// The body is stale on purpose; the parsed message wins.
	if err := HandleMessage(ctx, proc, "not json"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proc.lastFileID != "file-2" || proc.lastReqID != "req-2" {
		t.Fatalf("parsed message not used: %+v", proc)
	}
}

func TestHandleMessageWrapsProcessorFailure(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("record lookup failed")}
	body := `{"fileId":"file-1","requestId":"req-1","version":1}`

	err := HandleMessage(context.Background(), proc, body)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.FileID != "file-1" {
		t.Fatalf("expected file id carried, got %+v", procErr)
	}
}

func TestHandleMessageNilProcessor(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, `{"fileId":"file-1"}`); err == nil {
		t.Fatal("expected error with no processor")
	}
}

func TestComputeMeta(t *testing.T) {
	if got := ComputeMeta(""); got.BodyLen != 0 || got.BodySHA != "" {
		t.Fatalf("empty body meta: %+v", got)
	}
	got := ComputeMeta("abc")
	if got.BodyLen != 3 || len(got.BodySHA) != 64 {
		t.Fatalf("unexpected meta: %+v", got)
	}
}
