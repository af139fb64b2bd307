package domain

import "context"

// RestockHint tells the caller that a restock-worthy transition occurred:
// a paid order entered CANCELLED or REFUNDED, so its committed stock should
// be returned. The lifecycle manager never mutates stock itself; checkout
// consumes the hint.
type RestockHint struct {
	Items LineItems
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, req ListRequest) ([]Order, error)

	// RequestTransition validates and applies a status change. On success
	// the returned order carries the appended history entry and any
	// lifecycle timestamp; the hint is non-nil when the transition should
	// trigger an inventory restock.
	RequestTransition(ctx context.Context, req TransitionRequest) (*Order, *RestockHint, error)

	AddNote(ctx context.Context, orderID, note, author string) (*Order, error)

	UploadPaymentProof(ctx context.Context, orderID, proofURL string) (*Order, error)
	ConfirmPayment(ctx context.Context, orderID, confirmedBy string) (*Order, *RestockHint, error)
	RejectPayment(ctx context.Context, orderID, reason string) (*Order, error)
}

// CreateRequest carries everything the checkout flow computed: captured
// line items and the amounts persisted immutably on the order.
type CreateRequest struct {
	Items          LineItems
	Subtotal       int64
	Discount       int64
	DeliveryFee    int64
	Total          int64
	Currency       string
	CustomerName   string
	CustomerPhone  string
	DeliveryMethod string
	Region         string
	PaymentMethod  string
}

type ListRequest struct {
	Status *Status
	Limit  int
	Offset int
}

type TransitionRequest struct {
	OrderID string
	Target  Status

	// Context fields, each stored only when the target makes it applicable.
	TrackingNumber string
	CancelReason   string
	RefundReason   string
}

