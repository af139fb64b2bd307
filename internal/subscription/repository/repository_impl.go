package repository

import (
	"context"
	"errors"

	"github.com/linkshophq/linkshop/internal/subscription/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error
	FindByStore(ctx context.Context, db *gorm.DB, storeID int64) (*domain.Subscription, error)
	Update(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) FindByStore(ctx context.Context, db *gorm.DB, storeID int64) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Where("store_id = ?", storeID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	if sub == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET plan = ?, status = ?, current_period_end = ?, grace_deadline = ?, canceled_at = ?, updated_at = ?
		 WHERE store_id = ?`,
		sub.Plan,
		sub.Status,
		sub.CurrentPeriodEnd,
		sub.GraceDeadline,
		sub.CanceledAt,
		sub.UpdatedAt,
		sub.StoreID,
	).Error
}
