// Package domain contains persistence models for the store service.
package domain

import "time"

// Store represents a merchant tenant. Every product and order row is
// scoped by its ID.
type Store struct {
	ID          int64     `json:"id,string" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Handle      string    `json:"handle" gorm:"type:text;not null;uniqueIndex:ux_stores_handle"`
	Currency    string    `json:"currency" gorm:"type:text;not null"`
	NextOrderNo int64     `json:"-" gorm:"column:next_order_no;not null;default:0"`
	IsDefault   bool      `json:"is_default" gorm:"column:is_default"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

func (Store) TableName() string { return "stores" }
