package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linkshophq/linkshop/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, storeID, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, storeID int64, filter domain.ListRequest) ([]domain.Order, error) {
	var items []domain.Order
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("store_id = ?", storeID)

	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}

	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateWithStatusCAS writes the lifecycle fields in one statement
// conditioned on the status the caller read. RowsAffected == 0 means a
// concurrent transition won; the caller surfaces a conflict instead of
// clobbering it.
func (r *repo) UpdateWithStatusCAS(ctx context.Context, db *gorm.DB, order *domain.Order, expectedStatus domain.Status) (bool, error) {
	if order == nil {
		return false, gorm.ErrInvalidData
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, status_history = ?, tracking_number = ?, cancel_reason = ?, refund_reason = ?,
		     paid_at = ?, fulfilling_at = ?, shipped_at = ?, completed_at = ?, cancelled_at = ?, refunded_at = ?, disputed_at = ?,
		     updated_at = ?
		 WHERE store_id = ? AND id = ? AND status = ?`,
		order.Status,
		order.StatusHistory,
		order.TrackingNumber,
		order.CancelReason,
		order.RefundReason,
		order.PaidAt,
		order.FulfillingAt,
		order.ShippedAt,
		order.CompletedAt,
		order.CancelledAt,
		order.RefundedAt,
		order.DisputedAt,
		time.Now().UTC(),
		order.StoreID,
		order.ID,
		expectedStatus,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) UpdateNotes(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if order == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET admin_notes = ?, updated_at = ? WHERE store_id = ? AND id = ?`,
		order.AdminNotes,
		time.Now().UTC(),
		order.StoreID,
		order.ID,
	).Error
}

// UpdatePayment writes the manual-proof payment fields conditioned on the
// payment status the caller read.
func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, order *domain.Order, expectedPaymentStatus domain.PaymentStatus) (bool, error) {
	if order == nil {
		return false, gorm.ErrInvalidData
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_status = ?, payment_proof = ?, payment_confirmed_at = ?, payment_confirmed_by = ?, admin_notes = ?, updated_at = ?
		 WHERE store_id = ? AND id = ? AND payment_status = ?`,
		order.PaymentStatus,
		order.PaymentProof,
		order.PaymentConfirmedAt,
		order.PaymentConfirmedBy,
		order.AdminNotes,
		time.Now().UTC(),
		order.StoreID,
		order.ID,
		expectedPaymentStatus,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AllocateOrderNumber increments and reads the per-store sequence inside
// one transaction, so concurrent checkouts get distinct numbers.
func (r *repo) AllocateOrderNumber(ctx context.Context, db *gorm.DB, storeID int64) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE stores SET next_order_no = next_order_no + 1 WHERE id = ?`, storeID,
		).Error; err != nil {
			return err
		}
		return tx.Raw(
			`SELECT next_order_no FROM stores WHERE id = ?`, storeID,
		).Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return next, nil
}
