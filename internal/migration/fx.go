package migration

import (
	"github.com/linkshophq/linkshop/internal/config"
	"github.com/linkshophq/linkshop/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultStoreID != 0 {
			return seed.EnsureDefaultStoreWithID(conn, cfg.DefaultStoreID)
		}
		return seed.EnsureDefaultStore(conn)
	}),
)
