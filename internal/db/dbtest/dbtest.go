// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JPauldo/dept-builder/internal/config"
	"github.com/JPauldo/dept-builder/internal/db"
)

// Open returns a migrated, empty in-memory database closed at test cleanup.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.Config{
		Driver:             config.DriverSQLite,
		DatabaseURL:        "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		LogLevel:           "error",
		SlowQueryThreshold: time.Second,
	}

	database, err := db.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.Migrate(context.Background(), database))
	return database
}
