package queue

import (
	"encoding/json"
	"time"
)

// messageVersion is bumped when the payload shape changes, so workers can
// reject jobs they do not understand.
const messageVersion = 1

// Message is the ingest job payload sent to downstream queue consumers.
type Message struct {
	FileID     string `json:"fileId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage builds an ingest job for a file, stamped with the enqueue time
// and the current payload version.
func NewMessage(fileID, requestID string) Message {
	return Message{
		FileID:     fileID,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    messageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
