package plans

import (
	"context"
	"sync"
)

// MemoryResolver stores subscriptions in memory, for dev and tests.
type MemoryResolver struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryResolver constructs a MemoryResolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{subs: make(map[string]Subscription)}
}

// Set records a subscription for a user.
func (r *MemoryResolver) Set(userID string, sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[userID] = sub
}

// Resolve returns the user's subscription, defaulting to Free/unsubscribed.
func (r *MemoryResolver) Resolve(ctx context.Context, userID string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sub, ok := r.subs[userID]; ok {
		return sub, nil
	}
	return Subscription{Plan: TierFree, IsSubscribed: false}, nil
}

var _ Resolver = (*MemoryResolver)(nil)
