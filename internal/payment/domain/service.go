package domain

import "context"

type Service interface {
	// IngestWebhook verifies and records a provider webhook payload.
	IngestWebhook(ctx context.Context, provider string, payload []byte) error

	// ListAttempts returns an order's attempts newest first: the first
	// element is the latest provider status.
	ListAttempts(ctx context.Context, orderID int64) ([]PaymentAttempt, error)
}
