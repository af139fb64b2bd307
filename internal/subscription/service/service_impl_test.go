package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/config"
	"github.com/linkshophq/linkshop/internal/subscription/domain"
	"github.com/linkshophq/linkshop/internal/subscription/repository"
	subscriptionservice "github.com/linkshophq/linkshop/internal/subscription/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testStoreID int64 = 8200001

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.Exec(`CREATE TABLE subscriptions (
		id BIGINT PRIMARY KEY,
		store_id BIGINT NOT NULL UNIQUE,
		plan TEXT NOT NULL,
		status TEXT NOT NULL,
		current_period_end DATETIME,
		grace_deadline DATETIME,
		canceled_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB, fc *clock.FakeClock) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(22)
	require.NoError(t, err)

	return subscriptionservice.New(subscriptionservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{SubscriptionGraceDays: 7},
		Clock: fc,
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestGetCreatesFreeActiveSubscription(t *testing.T) {
	db := setupTestDB(t)
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newService(t, db, fc)
	ctx := context.Background()

	sub, err := svc.Get(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.Plan)
	assert.Equal(t, domain.StatusActive, sub.Status)
	assert.Nil(t, sub.CurrentPeriodEnd)

	// Second read returns the persisted record, not a new one.
	again, err := svc.Get(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
}

func TestChargeSucceededExtendsPeriod(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(start)
	svc := newService(t, db, fc)
	ctx := context.Background()

	sub, err := svc.RecordChargeSucceeded(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, sub.Plan)
	assert.Equal(t, domain.StatusActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, sub.CurrentPeriodEnd.Equal(start.AddDate(0, 1, 0)))
	assert.Nil(t, sub.GraceDeadline)
}

func TestChargeFailedOpensGraceWindow(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(start)
	svc := newService(t, db, fc)
	ctx := context.Background()

	sub, err := svc.RecordChargeFailed(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPastDue, sub.Status)
	require.NotNil(t, sub.GraceDeadline)
	assert.True(t, sub.GraceDeadline.Equal(start.Add(7*24*time.Hour)))

	// A retry failure inside the window keeps the original deadline.
	fc.Advance(48 * time.Hour)
	sub, err = svc.RecordChargeFailed(ctx, testStoreID)
	require.NoError(t, err)
	require.NotNil(t, sub.GraceDeadline)
	assert.True(t, sub.GraceDeadline.Equal(start.Add(7*24*time.Hour)))
}

func TestEnforceGraceWithinWindowIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newService(t, db, fc)
	ctx := context.Background()

	_, err := svc.RecordChargeFailed(ctx, testStoreID)
	require.NoError(t, err)

	fc.Advance(6 * 24 * time.Hour)
	sub, err := svc.EnforceGrace(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPastDue, sub.Status)
	assert.NotNil(t, sub.GraceDeadline)
}

func TestEnforceGraceDowngradesAfterDeadline(t *testing.T) {
	db := setupTestDB(t)
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newService(t, db, fc)
	ctx := context.Background()

	_, err := svc.RecordChargeSucceeded(ctx, testStoreID)
	require.NoError(t, err)
	_, err = svc.RecordChargeFailed(ctx, testStoreID)
	require.NoError(t, err)

	fc.Advance(7 * 24 * time.Hour)
	sub, err := svc.EnforceGrace(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, sub.Plan)
	assert.Equal(t, domain.StatusActive, sub.Status)
	assert.Nil(t, sub.GraceDeadline)
	assert.Nil(t, sub.CurrentPeriodEnd)

	// The downgrade is persisted.
	stored, err := svc.Get(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, stored.Plan)
	assert.Equal(t, domain.StatusActive, stored.Status)
}

func TestRecoveryBeforeDeadlineClearsGrace(t *testing.T) {
	db := setupTestDB(t)
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newService(t, db, fc)
	ctx := context.Background()

	_, err := svc.RecordChargeFailed(ctx, testStoreID)
	require.NoError(t, err)

	fc.Advance(24 * time.Hour)
	sub, err := svc.RecordChargeSucceeded(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, sub.Status)
	assert.Nil(t, sub.GraceDeadline)

	fc.Advance(30 * 24 * time.Hour)
	// Grace enforcement has nothing left to act on.
	sub, err = svc.EnforceGrace(ctx, testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, sub.Status)
}

func TestCancel(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(start)
	svc := newService(t, db, fc)

	sub, err := svc.Cancel(context.Background(), testStoreID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, sub.Status)
	require.NotNil(t, sub.CanceledAt)
	assert.True(t, sub.CanceledAt.Equal(start))
}
