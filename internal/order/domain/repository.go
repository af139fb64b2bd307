package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists orders. UpdateWithStatusCAS is the only mutation
// path for lifecycle fields: it is conditioned on the status the service
// read, so no two concurrent transitions can both succeed from the same
// source state.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, storeID, id int64) (*Order, error)
	List(ctx context.Context, db *gorm.DB, storeID int64, filter ListRequest) ([]Order, error)

	UpdateWithStatusCAS(ctx context.Context, db *gorm.DB, order *Order, expectedStatus Status) (bool, error)
	UpdateNotes(ctx context.Context, db *gorm.DB, order *Order) error
	UpdatePayment(ctx context.Context, db *gorm.DB, order *Order, expectedPaymentStatus PaymentStatus) (bool, error)

	// AllocateOrderNumber returns the next per-store order sequence value.
	AllocateOrderNumber(ctx context.Context, db *gorm.DB, storeID int64) (int64, error)
}
