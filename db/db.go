// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/logging"
)

// Open connects to the configured database. SQLite uses the pure Go driver;
// Postgres goes through lib/pq.
//
//nolint:gocritic // zerolog.Logger is passed by value
func Open(cfg cliparse.DatabaseConfig, logger zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case cliparse.DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        cfg.URL,
		})
	case cliparse.DriverSQLite, "":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.GormLogger(logger),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Workers and projects are deleted without touching their records.
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver != cliparse.DriverPostgres {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; also keeps ":memory:" databases on a single connection
		sqlDB.SetMaxOpenConns(1)
	}

	return conn, nil
}

// Migrate creates or updates all tables. Safe to call on every start.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Tables()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SeedAPIKeys inserts PlaceholderAPIKeys when the api_keys table is empty.
// It reports whether anything was inserted.
func SeedAPIKeys(ctx context.Context, conn *gorm.DB) (bool, error) {
	var count int64
	if err := conn.WithContext(ctx).Model(&APIKey{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count api keys: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	keys := make([]APIKey, len(PlaceholderAPIKeys))
	copy(keys, PlaceholderAPIKeys)
	if err := conn.WithContext(ctx).Create(&keys).Error; err != nil {
		return false, fmt.Errorf("failed to seed api keys: %w", err)
	}
	return true, nil
}

// Setup runs Migrate and SeedAPIKeys.
func Setup(ctx context.Context, conn *gorm.DB) error {
	if err := Migrate(conn); err != nil {
		return err
	}
	seeded, err := SeedAPIKeys(ctx, conn)
	if err != nil {
		return err
	}
	if seeded {
		l := logging.Logger()
		l.Warn().Int("keys", len(PlaceholderAPIKeys)).Msg("seeded placeholder api keys, replace them before exposing the service")
	}
	return nil
}
