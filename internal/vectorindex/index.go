// Package vectorindex stores and searches page embeddings. Each document's
// vectors live under a namespace equal to the file record's identifier, so
// documents sharing one index never see each other's pages.
package vectorindex

import (
	"context"
	"fmt"
	"strings"
)

// Entry is one embedded page to be written into the index.
type Entry struct {
	PageNumber int
	Text       string
	Embedding  []float32
}

// Match is one search hit, best first.
type Match struct {
	PageNumber int
	Text       string
	Score      float64
}

// Index partitions embedded pages by namespace.
type Index interface {
	Upsert(ctx context.Context, namespace string, entries []Entry) error
	Search(ctx context.Context, namespace string, query []float32, topK int) ([]Match, error)
	Drop(ctx context.Context, namespace string) error
}

// ToLiteral renders a vector as a pgvector text literal.
func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
