package domain_test

import (
	"testing"

	"github.com/linkshophq/linkshop/internal/checkout/domain"
	"github.com/linkshophq/linkshop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsHomeDeliveryToOutlyingIslands(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	totals, err := domain.ComputeTotals(cfg, 450, config.DeliveryMethodHome, config.RegionOutlyingIslands, 0)
	require.NoError(t, err)

	assert.False(t, totals.FreeShipping)
	assert.Equal(t, int64(40), totals.BaseShipping)
	assert.Equal(t, int64(20), totals.IslandSurcharge)
	assert.Equal(t, int64(60), totals.ShippingTotal)
	assert.Equal(t, int64(510), totals.Total)
}

func TestComputeTotalsFreeShippingWaivesSurcharge(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	totals, err := domain.ComputeTotals(cfg, 650, config.DeliveryMethodHome, config.RegionOutlyingIslands, 0)
	require.NoError(t, err)

	assert.True(t, totals.FreeShipping)
	assert.Equal(t, int64(0), totals.BaseShipping)
	assert.Equal(t, int64(0), totals.IslandSurcharge)
	assert.Equal(t, int64(0), totals.ShippingTotal)
	assert.Equal(t, int64(650), totals.Total)
}

func TestComputeTotalsThresholdBoundary(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	at, err := domain.ComputeTotals(cfg, 600, config.DeliveryMethodHome, "kowloon", 0)
	require.NoError(t, err)
	assert.True(t, at.FreeShipping)
	assert.Equal(t, int64(600), at.Total)

	below, err := domain.ComputeTotals(cfg, 599, config.DeliveryMethodHome, "kowloon", 0)
	require.NoError(t, err)
	assert.False(t, below.FreeShipping)
	assert.Equal(t, int64(639), below.Total)
}

func TestComputeTotalsLockerSkipsIslandSurcharge(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	totals, err := domain.ComputeTotals(cfg, 450, config.DeliveryMethodLocker, config.RegionOutlyingIslands, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(30), totals.BaseShipping)
	assert.Equal(t, int64(0), totals.IslandSurcharge)
	assert.Equal(t, int64(480), totals.Total)
}

func TestComputeTotalsDiscountNeverDrivesTotalNegative(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	totals, err := domain.ComputeTotals(cfg, 100, config.DeliveryMethodLocker, "kowloon", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(0), totals.Total)
}

func TestComputeTotalsNormalizesInput(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	totals, err := domain.ComputeTotals(cfg, 450, " Home ", "Outlying Islands", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(60), totals.ShippingTotal)
}

func TestComputeTotalsRejectsBadInput(t *testing.T) {
	cfg := config.DefaultShippingConfig()

	_, err := domain.ComputeTotals(cfg, 450, "drone", "kowloon", 0)
	require.ErrorIs(t, err, domain.ErrInvalidDeliveryMethod)

	_, err = domain.ComputeTotals(cfg, 450, config.DeliveryMethodHome, "shenzhen", 0)
	require.ErrorIs(t, err, domain.ErrInvalidRegion)

	_, err = domain.ComputeTotals(cfg, -1, config.DeliveryMethodHome, "kowloon", 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = domain.ComputeTotals(cfg, 450, config.DeliveryMethodHome, "kowloon", -5)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}
