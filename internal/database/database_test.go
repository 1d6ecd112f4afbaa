package database

import (
	"context"
	"embed"
	"testing"

	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

//go:embed testdata/migrations/*.sql
var testMigrationFS embed.FS

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConnect_SQLiteAutoMigrates(t *testing.T) {
	cfg := &config.Config{Env: "test", DBDriver: "sqlite", SQLitePath: ":memory:"}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_like_user_post"))
	assert.True(t, db.Migrator().HasIndex(&models.Subscription{}, "idx_subscriber_target"))
	assert.True(t, db.Migrator().HasIndex(&models.Report{}, "idx_reporter_reported"))
}

func TestEmbeddedMigrations_Registered(t *testing.T) {
	set := GetMigrations()
	require.NotEmpty(t, set)
	assert.Equal(t, 1, set[0].Version)
	assert.Equal(t, "000001_init", set[0].String())
	assert.Contains(t, set[0].UpScript, "idx_like_user_post")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestApplyAndRollbackMigrations(t *testing.T) {
	set, err := LoadMigrations(testMigrationFS, "testdata/migrations")
	require.NoError(t, err)
	require.Len(t, set, 2)

	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db, set))
	assert.True(t, db.Migrator().HasColumn("widgets", "color"))

	// Re-running is a no-op.
	require.NoError(t, ApplyMigrations(ctx, db, set))
	pending, err := PendingMigrations(ctx, db, set)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, RollbackFrom(ctx, db, set, 2))
	assert.False(t, db.Migrator().HasColumn("widgets", "color"))
	pending, err = PendingMigrations(ctx, db, set)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	assert.Error(t, RollbackFrom(ctx, db, set, 2), "already rolled back")
	assert.Error(t, RollbackFrom(ctx, db, set, 42), "unknown version")
}

func TestApplyMigrations_RejectsUnknownAppliedVersion(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 77, Name: "ghost"}).Error)

	set, err := LoadMigrations(testMigrationFS, "testdata/migrations")
	require.NoError(t, err)

	err = ApplyMigrations(ctx, db, set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000077")
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)
	assert.NoError(t, configurePool(db, &config.Config{DBMaxOpenConns: 10, DBMaxIdleConns: 5, DBConnMaxLifetimeMinutes: 15}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
