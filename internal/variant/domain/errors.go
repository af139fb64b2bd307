package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedVariantData marks variant JSON that matches none of the
	// persisted shapes. Parsing fails closed: the product is treated as
	// having no variants and zero stock.
	ErrMalformedVariantData = errors.New("malformed_variant_data")

	// ErrUnknownVariant marks a selection naming a dimension value that was
	// never part of the product's options. A value that exists but has no
	// stock entry is not an error; it is simply out of stock.
	ErrUnknownVariant = errors.New("unknown_variant")

	ErrInsufficientStock = errors.New("insufficient_stock")

	// ErrStockConflict is returned when a stock write loses its
	// compare-and-swap against the persisted record too many times.
	ErrStockConflict = errors.New("stock_conflict")
)

// UnknownVariantError carries the offending selection.
type UnknownVariantError struct {
	Selection string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown variant %q", e.Selection)
}

func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant
}

// InsufficientStockError carries requested vs. available quantities so the
// caller can build a precise message.
type InsufficientStockError struct {
	Selection string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Selection, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
