// Package testutil holds shared test fixtures: a migrated sqlite unit of
// work, an in-process API client and deterministic identifiers.
package testutil

import (
	"testing"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/infrastructure/persistence"
	"github.com/fieldops/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// seedNamespace keeps NewTestUUID stable across runs
var seedNamespace = uuid.MustParse("0f5c3f6e-52a1-4c58-9d3e-7b1e7f0a2c41")

// NewSQLiteDB opens a migrated in-memory sqlite database that is closed when
// the test ends. The pool is pinned to one connection so every statement
// sees the same memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "migrate sqlite")
	return db
}

// NewScope returns a real GORM unit of work over a fresh sqlite database
func NewScope(t *testing.T) (uow.Scope, *gorm.DB) {
	t.Helper()
	db := NewSQLiteDB(t)
	return persistence.NewGormTransactionScope(db), db
}

// NewTestUUID derives a reproducible UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(seed))
}

// TestSupplierID is the supplier every fixture order is raised against
func TestSupplierID() uuid.UUID {
	return NewTestUUID("supplier")
}

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
