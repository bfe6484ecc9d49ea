package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex stores embedded pages in memory, for dev and tests.
type MemoryIndex struct {
	mu         sync.RWMutex
	namespaces map[string]map[int]Entry
}

// NewMemoryIndex constructs a MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{namespaces: make(map[string]map[int]Entry)}
}

// Upsert writes all entries for a namespace.
func (x *MemoryIndex) Upsert(ctx context.Context, namespace string, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	pages := x.namespaces[namespace]
	if pages == nil {
		pages = make(map[int]Entry, len(entries))
		x.namespaces[namespace] = pages
	}
	for _, entry := range entries {
		pages[entry.PageNumber] = entry
	}
	return nil
}

// Search returns the topK pages closest to the query vector by cosine
// similarity.
func (x *MemoryIndex) Search(ctx context.Context, namespace string, query []float32, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 4
	}

	x.mu.RLock()
	pages := x.namespaces[namespace]
	matches := make([]Match, 0, len(pages))
	for _, entry := range pages {
		matches = append(matches, Match{
			PageNumber: entry.PageNumber,
			Text:       entry.Text,
			Score:      cosine(query, entry.Embedding),
		})
	}
	x.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].PageNumber < matches[j].PageNumber
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Drop removes every page in a namespace.
func (x *MemoryIndex) Drop(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.namespaces, namespace)
	return nil
}

// Count reports the number of pages stored in a namespace.
func (x *MemoryIndex) Count(namespace string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.namespaces[namespace])
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Index = (*MemoryIndex)(nil)
