package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, storeID, id int64) (*Product, error)
	List(ctx context.Context, db *gorm.DB, storeID int64, filter ListRequest) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error

	// UpdateStock conditionally replaces the variant JSON. It succeeds only
	// when the row still carries expectedVersion; the returned bool reports
	// whether the write was applied.
	UpdateStock(ctx context.Context, db *gorm.DB, product *Product, expectedVersion int64) (bool, error)
}
