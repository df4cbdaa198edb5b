// Package testutil gives repo and orchestrator tests a hermetic database:
// an in-memory SQLite handle by default, or a real Postgres instance when
// TEST_POSTGRES_DSN is set (for exercising Postgres-specific behavior).
package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/domain/research"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

var sqliteSeq atomic.Int64

// DB returns a migrated database handle for tb's lifetime. On the SQLite
// tier each call gets its own named in-memory database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		require.NoError(tb, err)
		require.NoError(tb, autoMigrateAll(gormDB))
		return gormDB
	}

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(tb, err)
	require.NoError(tb, autoMigrateAll(gormDB))
	return gormDB
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&research.Run{},
		&research.Step{},
		&research.Source{},
		&research.Answer{},
		&research.Event{},
	)
}

// Tx returns a transaction on db that tb.Cleanup rolls back, so tests never
// leave rows behind regardless of backend.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	tb.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

// NewLogger returns a no-op-friendly development logger for test wiring.
func NewLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	require.NoError(tb, err)
	return log
}
