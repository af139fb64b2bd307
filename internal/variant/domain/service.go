package domain

import "context"

// Service applies stock mutations against the persisted product record.
// Each mutation is an atomic check-and-update: the availability read and
// the write are guarded by a version compare-and-swap, so two concurrent
// decrements of the same variant key cannot interleave into an oversell.
type Service interface {
	Availability(ctx context.Context, productID, selection string) (int64, error)
	Decrement(ctx context.Context, productID, selection string, qty int64) error
	Restock(ctx context.Context, productID, selection string, qty int64) error
}
