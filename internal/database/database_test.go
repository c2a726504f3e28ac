package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/pdftoolkit/config"
)

func setupTestDB(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}
}

func TestInitSeedsSingletons(t *testing.T) {
	cfg := setupTestDB(t)
	db, err := Init(cfg)
	require.NoError(t, err)
	defer Close(db)

	var ads AdSenseConfig
	require.NoError(t, db.First(&ads, AdSenseConfigID).Error)
	assert.Empty(t, ads.PublisherID)
	assert.False(t, ads.EnableHeaderBanner)

	var counter Counter
	require.NoError(t, db.Where("name = ?", TrafficCounterName).First(&counter).Error)
	assert.Equal(t, int64(0), counter.Value)

	version, err := MigrationVersion(context.Background(), db, cfg.Driver)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestMigrateIsIdempotent(t *testing.T) {
	cfg := setupTestDB(t)
	db, err := Init(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(context.Background(), db, cfg.Driver))

	var count int64
	db.Model(&AdSenseConfig{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&Counter{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?"+sqliteParams, sqliteDSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&"+sqliteParams, sqliteDSN("file:a.db?mode=rwc"))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleGuest.Valid())
	assert.False(t, Role("owner").Valid())
}

func TestStorageConfigRedacted(t *testing.T) {
	c := StorageConfig{Name: "a", SecretKey: "s"}
	r := c.Redacted()
	assert.Empty(t, r.SecretKey)
	assert.Equal(t, "s", c.SecretKey)
}
