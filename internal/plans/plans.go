package plans

import "context"

const (
	// TierFree is the default tier for users without a subscription.
	TierFree = "Free"
	// TierPro is the paid tier.
	TierPro = "Pro"
)

// Tier describes one subscription tier and its per-document page ceiling.
type Tier struct {
	Name        string
	PagesPerPDF int
}

// Table maps tier names to their limits.
type Table struct {
	tiers map[string]Tier
}

// NewTable builds the tier table from the configured ceilings.
func NewTable(freePages, proPages int) Table {
	return Table{tiers: map[string]Tier{
		TierFree: {Name: TierFree, PagesPerPDF: freePages},
		TierPro:  {Name: TierPro, PagesPerPDF: proPages},
	}}
}

// Ceiling returns the page ceiling for a tier name.
func (t Table) Ceiling(name string) (int, bool) {
	tier, ok := t.tiers[name]
	if !ok {
		return 0, false
	}
	return tier.PagesPerPDF, true
}

// Subscription is a user's plan snapshot, read-only to the ingestion
// workflow.
type Subscription struct {
	Plan         string
	IsSubscribed bool
}

// Resolver looks up the subscription state for a user. Users without a
// stored subscription resolve to the Free tier, unsubscribed.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (Subscription, error)
}
