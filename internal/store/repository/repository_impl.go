package repository

import (
	"context"
	"errors"

	"github.com/linkshophq/linkshop/internal/store/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, store *domain.Store) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Store, error)
	FindByHandle(ctx context.Context, db *gorm.DB, handle string) (*domain.Store, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Create(store).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Store, error) {
	var s domain.Store
	err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) FindByHandle(ctx context.Context, db *gorm.DB, handle string) (*domain.Store, error) {
	var s domain.Store
	err := db.WithContext(ctx).Where("handle = ?", handle).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
