package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidHandle = errors.New("invalid_handle")
	ErrNotFound      = errors.New("store_not_found")
	ErrHandleTaken   = errors.New("handle_taken")
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Store, error)
	GetByHandle(ctx context.Context, handle string) (*Store, error)
	GetByID(ctx context.Context, id int64) (*Store, error)
}

type CreateRequest struct {
	Name     string `json:"name"`
	Handle   string `json:"handle,omitempty"`
	Currency string `json:"currency,omitempty"`
}
