package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	UpdateStock(ctx context.Context, req UpdateStockRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Title   string
	Active  *bool
	SortBy  string
	OrderBy string
}

type CreateRequest struct {
	Handle      string         `json:"handle"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Price       int64          `json:"price"`
	Currency    string         `json:"currency"`
	Sizes       map[string]any `json:"sizes"`
	SizeSystem  string         `json:"size_system"`
	Active      *bool          `json:"active"`
}

type UpdateRequest struct {
	ID          string  `json:"-"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Active      *bool   `json:"active"`
}

// UpdateStockRequest replaces the product's variant structure wholesale.
// The payload may be any of the supported persisted shapes; it is parsed
// and re-serialized canonically before it is stored.
type UpdateStockRequest struct {
	ID         string         `json:"-"`
	Sizes      map[string]any `json:"sizes"`
	SizeSystem string         `json:"size_system"`
}

type Response struct {
	ID          string         `json:"id"`
	StoreID     string         `json:"store_id"`
	Handle      string         `json:"handle"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Price       int64          `json:"price"`
	Currency    string         `json:"currency"`
	Sizes       map[string]any `json:"sizes,omitempty"`
	SizeSystem  string         `json:"size_system,omitempty"`
	TotalStock  int64          `json:"total_stock"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidStore  = errors.New("invalid_store")
	ErrInvalidHandle = errors.New("invalid_handle")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidPrice  = errors.New("invalid_price")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
)
