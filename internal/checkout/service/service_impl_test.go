package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	checkoutdomain "github.com/linkshophq/linkshop/internal/checkout/domain"
	checkoutservice "github.com/linkshophq/linkshop/internal/checkout/service"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/config"
	orderdomain "github.com/linkshophq/linkshop/internal/order/domain"
	orderrepo "github.com/linkshophq/linkshop/internal/order/repository"
	orderservice "github.com/linkshophq/linkshop/internal/order/service"
	productdomain "github.com/linkshophq/linkshop/internal/product/domain"
	productrepo "github.com/linkshophq/linkshop/internal/product/repository"
	productservice "github.com/linkshophq/linkshop/internal/product/service"
	"github.com/linkshophq/linkshop/internal/storectx"
	variantdomain "github.com/linkshophq/linkshop/internal/variant/domain"
	variantservice "github.com/linkshophq/linkshop/internal/variant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testStoreID int64 = 5400001

type fixture struct {
	db       *gorm.DB
	checkout checkoutdomain.Service
	variants variantdomain.Service
	orders   orderdomain.Service
	node     *snowflake.Node
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE stores (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			handle TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'HKD',
			next_order_no BIGINT NOT NULL DEFAULT 0,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			store_id BIGINT NOT NULL,
			handle TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			price BIGINT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'HKD',
			sizes TEXT,
			size_system TEXT,
			stock_version BIGINT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			store_id BIGINT NOT NULL,
			order_number TEXT NOT NULL,
			status TEXT NOT NULL,
			subtotal BIGINT NOT NULL,
			discount BIGINT NOT NULL DEFAULT 0,
			delivery_fee BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'HKD',
			items TEXT,
			customer_name TEXT,
			customer_phone TEXT,
			delivery_method TEXT,
			region TEXT,
			tracking_number TEXT,
			payment_method TEXT,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			payment_proof TEXT,
			payment_confirmed_at DATETIME,
			payment_confirmed_by TEXT,
			status_history TEXT,
			admin_notes TEXT,
			cancel_reason TEXT,
			refund_reason TEXT,
			paid_at DATETIME,
			fulfilling_at DATETIME,
			shipped_at DATETIME,
			completed_at DATETIME,
			cancelled_at DATETIME,
			refunded_at DATETIME,
			disputed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO stores (id, name, handle, currency, next_order_no, is_default, created_at, updated_at)
		 VALUES (?, 'Main', 'main', 'HKD', 0, TRUE, ?, ?)`,
		testStoreID, now, now,
	).Error)

	node, err := snowflake.NewNode(24)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{StockRetryAttempts: 3}

	productSvc := productservice.New(productservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  productrepo.Provide(),
	})
	variantSvc := variantservice.New(variantservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		Cfg:         cfg,
		ProductRepo: productrepo.Provide(),
	})
	orderSvc := orderservice.New(orderservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fc,
		GenID: node,
		Repo:  orderrepo.Provide(),
	})
	// A nil holder serves the built-in shipping defaults.
	checkoutSvc := checkoutservice.New(checkoutservice.Params{
		Log:        zap.NewNop(),
		Shipping:   nil,
		ProductSvc: productSvc,
		VariantSvc: variantSvc,
		OrderSvc:   orderSvc,
	})

	return &fixture{db: db, checkout: checkoutSvc, variants: variantSvc, orders: orderSvc, node: node}
}

func storeCtx() context.Context {
	return storectx.WithStoreID(context.Background(), testStoreID)
}

func seedProduct(t *testing.T, f *fixture, price int64, sizes string) string {
	t.Helper()

	id := f.node.Generate()
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&productdomain.Product{
		ID:         id.Int64(),
		StoreID:    testStoreID,
		Handle:     fmt.Sprintf("p-%s", id.String()),
		Title:      "Test Product",
		Price:      price,
		Currency:   "HKD",
		Sizes:      datatypes.JSON(sizes),
		SizeSystem: "EU",
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error)
	return id.String()
}

func TestQuoteUsesShippingDefaults(t *testing.T) {
	f := setup(t)

	totals, err := f.checkout.Quote(storeCtx(), checkoutdomain.QuoteRequest{
		Subtotal:       450,
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         config.RegionOutlyingIslands,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60), totals.ShippingTotal)
	assert.Equal(t, int64(510), totals.Total)
}

func TestPlaceOrderDecrementsStockAndPersistsTotals(t *testing.T) {
	f := setup(t)
	ctx := storeCtx()

	productID := seedProduct(t, f, 250, `{"M": 5}`)

	order, err := f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: productID, Variant: "M", Quantity: 2},
		},
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         "kowloon",
		CustomerName:   "Chan Tai Man",
		CustomerPhone:  "+852 9123 4567",
		PaymentMethod:  "fps",
	})
	require.NoError(t, err)

	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.Equal(t, int64(500), order.Subtotal)
	assert.Equal(t, int64(40), order.DeliveryFee)
	assert.Equal(t, int64(540), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(250), order.Items[0].UnitPrice)
	require.NotNil(t, order.Items[0].VariantKey)
	assert.Equal(t, "M", *order.Items[0].VariantKey)

	avail, err := f.variants.Availability(ctx, productID, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(3), avail)
}

func TestPlaceOrderWithoutTrackedVariants(t *testing.T) {
	f := setup(t)
	ctx := storeCtx()

	plain := seedProduct(t, f, 300, `{}`)
	sized := seedProduct(t, f, 100, `{"M": 4}`)

	order, err := f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: plain, Variant: "", Quantity: 2},
			{ProductID: sized, Variant: "M", Quantity: 1},
		},
		DeliveryMethod: config.DeliveryMethodLocker,
		Region:         "kowloon",
		CustomerName:   "Chan Tai Man",
		CustomerPhone:  "+852 9123 4567",
		PaymentMethod:  "fps",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(700), order.Subtotal)
	require.Len(t, order.Items, 2)
	assert.Nil(t, order.Items[0].VariantKey)
	require.NotNil(t, order.Items[1].VariantKey)

	avail, err := f.variants.Availability(ctx, sized, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(3), avail)

	// A selection against a product with no variants is still rejected.
	_, err = f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: plain, Variant: "M", Quantity: 1},
		},
		DeliveryMethod: config.DeliveryMethodLocker,
		Region:         "kowloon",
	})
	require.ErrorIs(t, err, variantdomain.ErrUnknownVariant)
}

func TestPlaceOrderFreeShippingOverThreshold(t *testing.T) {
	f := setup(t)
	ctx := storeCtx()

	productID := seedProduct(t, f, 650, `{"M": 1}`)

	order, err := f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: productID, Variant: "M", Quantity: 1},
		},
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         config.RegionOutlyingIslands,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.DeliveryFee)
	assert.Equal(t, int64(650), order.Total)
}

func TestPlaceOrderInsufficientStockRestocksEarlierLines(t *testing.T) {
	f := setup(t)
	ctx := storeCtx()

	first := seedProduct(t, f, 100, `{"M": 5}`)
	second := seedProduct(t, f, 100, `{"M": 1}`)

	_, err := f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: first, Variant: "M", Quantity: 2},
			{ProductID: second, Variant: "M", Quantity: 3},
		},
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         "kowloon",
	})
	require.ErrorIs(t, err, variantdomain.ErrInsufficientStock)

	// The first line's stock came back when the second failed.
	avail, err := f.variants.Availability(ctx, first, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(5), avail)

	avail, err = f.variants.Availability(ctx, second, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(1), avail)
}

func TestPlaceOrderValidatesCart(t *testing.T) {
	f := setup(t)
	ctx := storeCtx()

	_, err := f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         "kowloon",
	})
	require.ErrorIs(t, err, checkoutdomain.ErrEmptyCart)

	productID := seedProduct(t, f, 100, `{"M": 5}`)
	_, err = f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: productID, Variant: "M", Quantity: 0},
		},
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         "kowloon",
	})
	require.ErrorIs(t, err, checkoutdomain.ErrInvalidQuantity)
}

func TestRestockFromHintReturnsCommittedStock(t *testing.T) {
	f := setup(t)
	ctx := storeCtx()

	productID := seedProduct(t, f, 250, `{"M": 5}`)

	order, err := f.checkout.PlaceOrder(ctx, checkoutdomain.PlaceOrderRequest{
		Lines: []checkoutdomain.CartLine{
			{ProductID: productID, Variant: "M", Quantity: 2},
		},
		DeliveryMethod: config.DeliveryMethodHome,
		Region:         "kowloon",
	})
	require.NoError(t, err)

	orderID := snowflake.ID(order.ID).String()
	_, err = f.orders.UploadPaymentProof(ctx, orderID, "https://cdn.linkshop.hk/proofs/ok.jpg")
	require.NoError(t, err)
	_, _, err = f.orders.ConfirmPayment(ctx, orderID, "admin")
	require.NoError(t, err)

	_, hint, err := f.orders.RequestTransition(ctx, orderdomain.TransitionRequest{
		OrderID: orderID,
		Target:  orderdomain.StatusCancelled,
	})
	require.NoError(t, err)
	require.NotNil(t, hint)

	require.NoError(t, f.checkout.Restock(ctx, hint))

	avail, err := f.variants.Availability(ctx, productID, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(5), avail)
}
