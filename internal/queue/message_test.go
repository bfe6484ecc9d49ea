package queue

import (
	"reflect"
	"testing"
	"time"
)

func TestNewMessageStampsEnqueueTime(t *testing.T) {
	msg := NewMessage("file-123", "request-456")

	if msg.FileID != "file-123" || msg.RequestID != "request-456" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Version != messageVersion {
		t.Fatalf("expected version %d, got %d", messageVersion, msg.Version)
	}
	if _, err := time.Parse(time.RFC3339, msg.EnqueuedAt); err != nil {
		t.Fatalf("enqueuedAt not RFC3339: %v", err)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		FileID:     "file-123",
		RequestID:  "request-456",
		EnqueuedAt: "2026-01-30T22:00:00Z",
		Version:    1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestDecodeMessageRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
