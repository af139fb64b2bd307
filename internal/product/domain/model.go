package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a storefront listing. Variant stock is embedded as JSON in
// Sizes; SizeSystem names the dimension for the flat shapes. StockVersion
// guards concurrent stock writes: every stock mutation bumps it and the
// UPDATE is conditioned on the version it read.
type Product struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	StoreID     int64          `json:"store_id" gorm:"column:store_id;not null;index:ux_products_store_handle,priority:1"`
	Handle      string         `json:"handle" gorm:"type:text;not null;index:ux_products_store_handle,priority:2"`
	Title       string         `json:"title" gorm:"type:text;not null"`
	Description *string        `json:"description,omitempty" gorm:"type:text"`
	Price       int64          `json:"price" gorm:"not null"`
	Currency    string         `json:"currency" gorm:"type:text;not null;default:'HKD'"`
	Sizes       datatypes.JSON `json:"sizes,omitempty" gorm:"type:jsonb"`
	SizeSystem  string         `json:"size_system" gorm:"type:text"`
	StockVersion int64         `json:"-" gorm:"column:stock_version;not null;default:0"`
	Active      bool           `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
