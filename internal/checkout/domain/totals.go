// Package domain holds the checkout total computation and request shapes.
package domain

import (
	"strings"

	"github.com/linkshophq/linkshop/internal/config"
)

// Totals is the priced breakdown of a cart. The same computation runs for
// the quote endpoint and for order creation, so the number the customer
// sees is the number persisted on the order.
type Totals struct {
	Subtotal        int64 `json:"subtotal"`
	Discount        int64 `json:"discount"`
	BaseShipping    int64 `json:"base_shipping"`
	IslandSurcharge int64 `json:"island_surcharge"`
	ShippingTotal   int64 `json:"shipping_total"`
	FreeShipping    bool  `json:"free_shipping"`
	Total           int64 `json:"total"`
}

// ComputeTotals prices a cart. Free shipping overrides the outlying-islands
// surcharge, and the discount never pushes the total below zero.
func ComputeTotals(cfg config.ShippingConfig, subtotal int64, deliveryMethod, region string, discount int64) (Totals, error) {
	deliveryMethod = strings.ToLower(strings.TrimSpace(deliveryMethod))
	region = strings.ToLower(strings.TrimSpace(region))

	baseFee, ok := cfg.BaseFee(deliveryMethod)
	if !ok {
		return Totals{}, ErrInvalidDeliveryMethod
	}
	if !cfg.KnownRegion(region) {
		return Totals{}, ErrInvalidRegion
	}
	if subtotal < 0 || discount < 0 {
		return Totals{}, ErrInvalidAmount
	}

	t := Totals{
		Subtotal: subtotal,
		Discount: discount,
	}

	t.FreeShipping = subtotal >= cfg.FreeShippingThreshold
	if !t.FreeShipping {
		t.BaseShipping = baseFee
		if region == config.RegionOutlyingIslands && deliveryMethod == config.DeliveryMethodHome {
			t.IslandSurcharge = cfg.IslandSurcharge
		}
	}
	t.ShippingTotal = t.BaseShipping + t.IslandSurcharge

	t.Total = subtotal + t.ShippingTotal - discount
	if t.Total < 0 {
		t.Total = 0
	}
	return t, nil
}
