package queue

import "context"

// Client sends ingest jobs to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
