// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/logging"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(cliparse.DatabaseConfig{Driver: cliparse.DriverSQLite, URL: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return conn
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(cliparse.DatabaseConfig{Driver: "mysql", URL: "x"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestMigrate_CreatesTables(t *testing.T) {
	conn := openMemory(t)

	for _, table := range []string{"workers", "projects", "photos", "records", "api_keys"} {
		assert.True(t, conn.Migrator().HasTable(table), "table %s", table)
	}

	// idempotent
	require.NoError(t, Migrate(conn))
}

func TestSetup_WarnsAboutPlaceholderKeys(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &buf})
	t.Cleanup(logging.Nop)

	conn, err := Open(cliparse.DatabaseConfig{Driver: cliparse.DriverSQLite, URL: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Setup(context.Background(), conn))
	assert.Contains(t, buf.String(), "seeded placeholder api keys")

	buf.Reset()
	require.NoError(t, Setup(context.Background(), conn))
	assert.Empty(t, buf.String())
}

func TestSeedAPIKeys(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	seeded, err := SeedAPIKeys(ctx, conn)
	require.NoError(t, err)
	assert.True(t, seeded)

	var keys []APIKey
	require.NoError(t, conn.Order("id").Find(&keys).Error)
	require.Len(t, keys, 2)
	assert.Equal(t, "your_predefined_api_key_1", keys[0].Key)
	assert.Equal(t, "Mobile App Key", keys[0].Description)
	assert.Equal(t, "your_predefined_api_key_2", keys[1].Key)

	// only seeds an empty table
	seeded, err = SeedAPIKeys(ctx, conn)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestSeedAPIKeys_SkipsWhenKeysExist(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Create(&APIKey{Key: "real-key"}).Error)

	seeded, err := SeedAPIKeys(context.Background(), conn)
	require.NoError(t, err)
	assert.False(t, seeded)

	var count int64
	require.NoError(t, conn.Model(&APIKey{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUniqueNames(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Create(&Worker{Name: "Alice"}).Error)

	assert.Error(t, conn.Create(&Worker{Name: "Alice"}).Error)
}
