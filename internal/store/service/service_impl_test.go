package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/store/domain"
	"github.com/linkshophq/linkshop/internal/store/repository"
	storeservice "github.com/linkshophq/linkshop/internal/store/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.Exec(`CREATE TABLE stores (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		handle TEXT NOT NULL UNIQUE,
		currency TEXT NOT NULL DEFAULT 'HKD',
		next_order_no BIGINT NOT NULL DEFAULT 0,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(25)
	require.NoError(t, err)

	return storeservice.New(storeservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateSlugifiesHandle(t *testing.T) {
	svc := newService(t, setupTestDB(t))
	ctx := context.Background()

	store, err := svc.Create(ctx, domain.CreateRequest{Name: "Mei's Ceramics Studio"})
	require.NoError(t, err)
	assert.Equal(t, "Mei's Ceramics Studio", store.Name)
	assert.Equal(t, "meis-ceramics-studio", store.Handle)
	assert.Equal(t, "HKD", store.Currency)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreateDuplicateHandle(t *testing.T) {
	svc := newService(t, setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "First", Handle: "shop"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Second", Handle: "shop"})
	require.ErrorIs(t, err, domain.ErrHandleTaken)
}

func TestGetByHandleIsCaseInsensitive(t *testing.T) {
	svc := newService(t, setupTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Shop", Handle: "my-shop"})
	require.NoError(t, err)

	found, err := svc.GetByHandle(ctx, "  MY-SHOP ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByHandle(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
