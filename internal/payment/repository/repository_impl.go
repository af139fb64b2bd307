package repository

import (
	"context"

	"github.com/linkshophq/linkshop/internal/payment/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, attempt *domain.PaymentAttempt) error
	ListByOrder(ctx context.Context, db *gorm.DB, storeID, orderID int64) ([]domain.PaymentAttempt, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, event *domain.ProcessedEvent) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, attempt *domain.PaymentAttempt) error {
	return db.WithContext(ctx).Create(attempt).Error
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, storeID, orderID int64) ([]domain.PaymentAttempt, error) {
	var attempts []domain.PaymentAttempt
	err := db.WithContext(ctx).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// MarkProcessed inserts the processed-event marker. The unique index on
// (provider, provider_event_id) turns a replay into a duplicate-key error
// for the caller to swallow.
func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, event *domain.ProcessedEvent) error {
	return db.WithContext(ctx).Create(event).Error
}
