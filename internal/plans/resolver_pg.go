package plans

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGResolver resolves subscriptions from a Postgres table.
type PGResolver struct {
	DB *sql.DB
}

// Resolve returns the user's subscription, defaulting to Free/unsubscribed
// when no row exists. A subscription whose period has lapsed counts as
// unsubscribed.
func (r *PGResolver) Resolve(ctx context.Context, userID string) (Subscription, error) {
	const query = `
SELECT plan, is_subscribed, current_period_end
FROM subscriptions
WHERE user_id = $1
LIMIT 1`
	var plan string
	var isSubscribed bool
	var periodEnd sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&plan, &isSubscribed, &periodEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subscription{Plan: TierFree, IsSubscribed: false}, nil
		}
		return Subscription{}, err
	}

	if isSubscribed && periodEnd.Valid && periodEnd.Time.Before(time.Now().UTC()) {
		isSubscribed = false
	}
	if plan == "" {
		plan = TierFree
	}
	return Subscription{Plan: plan, IsSubscribed: isSubscribed}, nil
}

var _ Resolver = (*PGResolver)(nil)
