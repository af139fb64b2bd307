package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("subscription_not_found")
)

type Service interface {
	// Get returns the store's subscription, creating an ACTIVE free-plan
	// record on first read.
	Get(ctx context.Context, storeID int64) (*Subscription, error)

	// RecordChargeSucceeded puts the store on the pro plan for another
	// billing period and clears any grace window.
	RecordChargeSucceeded(ctx context.Context, storeID int64) (*Subscription, error)

	// RecordChargeFailed moves the subscription to PAST_DUE and opens the
	// grace window. Already past-due subscriptions keep their original
	// deadline.
	RecordChargeFailed(ctx context.Context, storeID int64) (*Subscription, error)

	// EnforceGrace downgrades a PAST_DUE subscription to the free plan if
	// its grace deadline has passed. Within the window it is a no-op.
	EnforceGrace(ctx context.Context, storeID int64) (*Subscription, error)

	// Cancel ends the subscription immediately.
	Cancel(ctx context.Context, storeID int64) (*Subscription, error)
}
