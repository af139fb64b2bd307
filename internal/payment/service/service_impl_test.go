package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/payment/domain"
	"github.com/linkshophq/linkshop/internal/payment/repository"
	paymentservice "github.com/linkshophq/linkshop/internal/payment/service"
	"github.com/linkshophq/linkshop/internal/storectx"
	subscriptiondomain "github.com/linkshophq/linkshop/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testStoreID int64 = 6300001

type subscriptionStub struct {
	succeeded []int64
	failed    []int64
	enforced  []int64
}

func (s *subscriptionStub) Get(ctx context.Context, storeID int64) (*subscriptiondomain.Subscription, error) {
	return &subscriptiondomain.Subscription{StoreID: storeID}, nil
}

func (s *subscriptionStub) RecordChargeSucceeded(ctx context.Context, storeID int64) (*subscriptiondomain.Subscription, error) {
	s.succeeded = append(s.succeeded, storeID)
	return &subscriptiondomain.Subscription{StoreID: storeID}, nil
}

func (s *subscriptionStub) RecordChargeFailed(ctx context.Context, storeID int64) (*subscriptiondomain.Subscription, error) {
	s.failed = append(s.failed, storeID)
	return &subscriptiondomain.Subscription{StoreID: storeID}, nil
}

func (s *subscriptionStub) EnforceGrace(ctx context.Context, storeID int64) (*subscriptiondomain.Subscription, error) {
	s.enforced = append(s.enforced, storeID)
	return &subscriptiondomain.Subscription{StoreID: storeID}, nil
}

func (s *subscriptionStub) Cancel(ctx context.Context, storeID int64) (*subscriptiondomain.Subscription, error) {
	return &subscriptiondomain.Subscription{StoreID: storeID}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.Exec(`CREATE TABLE payment_attempts (
		id BIGINT PRIMARY KEY,
		store_id BIGINT NOT NULL,
		order_id BIGINT NOT NULL,
		provider TEXT NOT NULL,
		provider_event_id TEXT NOT NULL,
		status TEXT NOT NULL,
		amount BIGINT NOT NULL,
		currency TEXT NOT NULL,
		failure_code TEXT,
		failure_message TEXT,
		payload TEXT,
		created_at DATETIME NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}

	err = db.Exec(`CREATE TABLE webhook_events (
		id BIGINT PRIMARY KEY,
		store_id BIGINT NOT NULL,
		provider TEXT NOT NULL,
		provider_event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (provider, provider_event_id)
	)`).Error
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB, subs subscriptiondomain.Service) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(23)
	require.NoError(t, err)

	return paymentservice.New(paymentservice.Params{
		DB:              db,
		Log:             zap.NewNop(),
		Clock:           clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		GenID:           node,
		Repo:            repository.Provide(),
		SubscriptionSvc: subs,
	})
}

func storeCtx() context.Context {
	return storectx.WithStoreID(context.Background(), testStoreID)
}

func paymentPayload(eventID, orderID, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"id": %q, "type": "payment", "order_id": %q, "amount": 540, "currency": "hkd", "status": %q}`,
		eventID, orderID, status,
	))
}

func TestIngestWebhookRecordsAttempt(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})
	ctx := storeCtx()

	orderID := snowflake.ID(424242)
	err := svc.IngestWebhook(ctx, "stripe", paymentPayload("evt_001", orderID.String(), "succeeded"))
	require.NoError(t, err)

	attempts, err := svc.ListAttempts(ctx, orderID.Int64())
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "stripe", attempts[0].Provider)
	assert.Equal(t, "evt_001", attempts[0].ProviderEventID)
	assert.Equal(t, domain.AttemptSucceeded, attempts[0].Status)
	assert.Equal(t, int64(540), attempts[0].Amount)
	assert.Equal(t, "HKD", attempts[0].Currency)
}

func TestIngestWebhookReplayIsIgnored(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})
	ctx := storeCtx()

	orderID := snowflake.ID(424242)
	payload := paymentPayload("evt_dup", orderID.String(), "processing")

	require.NoError(t, svc.IngestWebhook(ctx, "fps", payload))
	require.NoError(t, svc.IngestWebhook(ctx, "fps", payload))

	attempts, err := svc.ListAttempts(ctx, orderID.Int64())
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestIngestWebhookSameEventIDAcrossProviders(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})
	ctx := storeCtx()

	orderID := snowflake.ID(424242)
	require.NoError(t, svc.IngestWebhook(ctx, "payme", paymentPayload("evt_x", orderID.String(), "succeeded")))
	require.NoError(t, svc.IngestWebhook(ctx, "alipayhk", paymentPayload("evt_x", orderID.String(), "succeeded")))

	attempts, err := svc.ListAttempts(ctx, orderID.Int64())
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestIngestWebhookFailureAttempt(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})
	ctx := storeCtx()

	orderID := snowflake.ID(424242)
	payload := []byte(fmt.Sprintf(
		`{"id": "evt_f", "type": "payment", "order_id": %q, "amount": 540, "currency": "HKD",
		  "status": "failed", "failure_code": "card_declined", "failure_message": "card was declined"}`,
		orderID.String(),
	))
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", payload))

	attempts, err := svc.ListAttempts(ctx, orderID.Int64())
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.AttemptFailed, attempts[0].Status)
	require.NotNil(t, attempts[0].FailureCode)
	assert.Equal(t, "card_declined", *attempts[0].FailureCode)
}

func TestListAttemptsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})
	ctx := storeCtx()

	orderID := snowflake.ID(424242)
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", paymentPayload("evt_1", orderID.String(), "processing")))
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", paymentPayload("evt_2", orderID.String(), "succeeded")))

	attempts, err := svc.ListAttempts(ctx, orderID.Int64())
	require.NoError(t, err)
	require.Len(t, attempts, 2)
}

func TestIngestWebhookRejectsUnknownProvider(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})

	err := svc.IngestWebhook(storeCtx(), "square", paymentPayload("evt_1", "123", "succeeded"))
	require.ErrorIs(t, err, domain.ErrProviderNotFound)

	err = svc.IngestWebhook(storeCtx(), "  ", paymentPayload("evt_1", "123", "succeeded"))
	require.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestIngestWebhookRejectsBadPayloads(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})
	ctx := storeCtx()

	err := svc.IngestWebhook(ctx, "stripe", []byte(`{"id": "evt_1", "type"`))
	require.ErrorIs(t, err, domain.ErrInvalidPayload)

	// Missing event id.
	err = svc.IngestWebhook(ctx, "stripe", []byte(`{"type": "payment", "order_id": "123", "status": "succeeded"}`))
	require.ErrorIs(t, err, domain.ErrInvalidPayload)

	// Payment event without a parseable order id.
	err = svc.IngestWebhook(ctx, "stripe", []byte(`{"id": "evt_1", "type": "payment", "order_id": "abc!", "status": "succeeded"}`))
	require.ErrorIs(t, err, domain.ErrInvalidPayload)

	// Status outside the fixed vocabulary.
	err = svc.IngestWebhook(ctx, "stripe", paymentPayload("evt_1", "123", "maybe"))
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestIngestWebhookUnknownEventTypeIsIgnored(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})

	err := svc.IngestWebhook(storeCtx(), "stripe", []byte(`{"id": "evt_1", "type": "customer.created"}`))
	require.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestIngestWebhookRequiresStore(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})

	err := svc.IngestWebhook(context.Background(), "stripe", paymentPayload("evt_1", "123", "succeeded"))
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestIngestWebhookStoreFromPayloadWins(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &subscriptionStub{})

	other := snowflake.ID(testStoreID + 1)
	orderID := snowflake.ID(424242)
	payload := []byte(fmt.Sprintf(
		`{"id": "evt_1", "type": "payment", "order_id": %q, "store_id": %q, "status": "succeeded"}`,
		orderID.String(), other.String(),
	))
	require.NoError(t, svc.IngestWebhook(storeCtx(), "stripe", payload))

	// Listing under the ambient store finds nothing; the payload's store
	// owns the attempt.
	attempts, err := svc.ListAttempts(storeCtx(), orderID.Int64())
	require.NoError(t, err)
	assert.Empty(t, attempts)

	attempts, err = svc.ListAttempts(storectx.WithStoreID(context.Background(), other.Int64()), orderID.Int64())
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestIngestWebhookSubscriptionCharges(t *testing.T) {
	db := setupTestDB(t)
	stub := &subscriptionStub{}
	svc := newService(t, db, stub)
	ctx := storeCtx()

	err := svc.IngestWebhook(ctx, "stripe", []byte(`{"id": "evt_s1", "type": "subscription_charge"}`))
	require.NoError(t, err)
	require.Len(t, stub.succeeded, 1)
	assert.Equal(t, testStoreID, stub.succeeded[0])

	err = svc.IngestWebhook(ctx, "stripe", []byte(`{"id": "evt_s2", "type": "subscription_charge_failed"}`))
	require.NoError(t, err)
	require.Len(t, stub.failed, 1)
	require.Len(t, stub.enforced, 1)
}

// A replayed subscription webhook must not extend the billing period or
// reopen grace a second time.
func TestIngestWebhookSubscriptionReplayIsIgnored(t *testing.T) {
	db := setupTestDB(t)
	stub := &subscriptionStub{}
	svc := newService(t, db, stub)
	ctx := storeCtx()

	charge := []byte(`{"id": "evt_sub_1", "type": "subscription_charge"}`)
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", charge))
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", charge))
	require.Len(t, stub.succeeded, 1)

	failure := []byte(`{"id": "evt_sub_2", "type": "subscription_charge_failed"}`)
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", failure))
	require.NoError(t, svc.IngestWebhook(ctx, "stripe", failure))
	require.Len(t, stub.failed, 1)
	require.Len(t, stub.enforced, 1)
}
