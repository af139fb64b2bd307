package repository

import (
	"context"
	"time"

	"github.com/linkshophq/linkshop/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, store_id, handle, title, description, price, currency, sizes, size_system, stock_version, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.StoreID,
		product.Handle,
		product.Title,
		product.Description,
		product.Price,
		product.Currency,
		product.Sizes,
		product.SizeSystem,
		product.StockVersion,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, storeID, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, store_id, handle, title, description, price, currency, sizes, size_system, stock_version, active, created_at, updated_at
		 FROM products WHERE store_id = ? AND id = ?`,
		storeID,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, storeID int64, filter domain.ListRequest) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("store_id = ?", storeID)

	if filter.Title != "" {
		stmt = stmt.Where("title = ?", filter.Title)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	stmt = stmt.Order("created_at ASC")

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET title = ?, description = ?, price = ?, active = ?, updated_at = ?
		 WHERE store_id = ? AND id = ?`,
		product.Title,
		product.Description,
		product.Price,
		product.Active,
		product.UpdatedAt,
		product.StoreID,
		product.ID,
	).Error
}

func (r *repo) UpdateStock(ctx context.Context, db *gorm.DB, product *domain.Product, expectedVersion int64) (bool, error) {
	if product == nil {
		return false, gorm.ErrInvalidData
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE products
		 SET sizes = ?, size_system = ?, stock_version = stock_version + 1, updated_at = ?
		 WHERE store_id = ? AND id = ? AND stock_version = ?`,
		product.Sizes,
		product.SizeSystem,
		time.Now().UTC(),
		product.StoreID,
		product.ID,
		expectedVersion,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
