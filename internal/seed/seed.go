package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/linkshophq/linkshop/internal/store/domain"
	"gorm.io/gorm"
)

const (
	defaultStoreName   = "Main"
	defaultStoreHandle = "main"
)

// EnsureDefaultStore seeds the default store for startup bootstrap.
func EnsureDefaultStore(db *gorm.DB) error {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}
	return ensureStore(db, node.Generate().Int64())
}

// EnsureDefaultStoreWithID seeds the default store under a fixed ID so
// self-hosted installs can pin the tenant they serve.
func EnsureDefaultStoreWithID(db *gorm.DB, id int64) error {
	return ensureStore(db, id)
}

func ensureStore(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing storedomain.Store
		err := tx.WithContext(ctx).Where("handle = ?", defaultStoreHandle).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		store := storedomain.Store{
			ID:        id,
			Name:      defaultStoreName,
			Handle:    defaultStoreHandle,
			Currency:  "HKD",
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&store).Error
	})
}
