package domain

import (
	"context"
	"errors"

	orderdomain "github.com/linkshophq/linkshop/internal/order/domain"
)

var (
	ErrInvalidDeliveryMethod = errors.New("invalid_delivery_method")
	ErrInvalidRegion         = errors.New("invalid_region")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrEmptyCart             = errors.New("empty_cart")
	ErrInvalidQuantity       = errors.New("invalid_quantity")
)

// CartLine is one requested item: a product, an optional variant selection,
// and a quantity.
type CartLine struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant,omitempty"`
	Quantity  int64  `json:"quantity"`
}

type QuoteRequest struct {
	Subtotal       int64  `json:"subtotal"`
	DeliveryMethod string `json:"delivery_method"`
	Region         string `json:"region"`
	Discount       int64  `json:"discount,omitempty"`
}

type PlaceOrderRequest struct {
	Lines          []CartLine `json:"lines"`
	DeliveryMethod string     `json:"delivery_method"`
	Region         string     `json:"region"`
	Discount       int64      `json:"discount,omitempty"`
	CustomerName   string     `json:"customer_name"`
	CustomerPhone  string     `json:"customer_phone"`
	PaymentMethod  string     `json:"payment_method"`
}

type Service interface {
	// Quote prices a cart without touching stock.
	Quote(ctx context.Context, req QuoteRequest) (Totals, error)

	// PlaceOrder decrements stock per line and creates the order at
	// PENDING. A line that cannot be satisfied aborts the whole order and
	// returns already-taken stock.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*orderdomain.Order, error)

	// Restock returns an order's committed stock after a post-payment
	// cancellation or refund.
	Restock(ctx context.Context, hint *orderdomain.RestockHint) error
}
