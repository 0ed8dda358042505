//go:build integration

// Package integration runs the reconciliation services against a real
// PostgreSQL started with testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/fieldops/backend/internal/infrastructure/migration"
	"github.com/fieldops/backend/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

const (
	pgImage    = "postgres:16-alpine"
	pgDatabase = "fieldops_test"
	pgUser     = "fieldops"
	pgPassword = "fieldops"
)

// TestDB is a migrated database in a container of its own
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
}

// NewTestDB starts PostgreSQL, migrates it with the embedded migrations and
// connects through the production database setup. Everything is torn down
// when t ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, pgImage,
		tcpostgres.WithDatabase(pgDatabase),
		tcpostgres.WithUsername(pgUser),
		tcpostgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:         host,
			Port:         port.Int(),
			User:         pgUser,
			Password:     pgPassword,
			DBName:       pgDatabase,
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			LockTimeout:  5 * time.Second,
		},
		Log: config.LogConfig{Level: "warn"},
	}
	log := zaptest.NewLogger(t)

	migrateDB := waitForSQL(t, cfg.Database.DSN())
	m, err := migration.New(migrateDB, log)
	require.NoError(t, err)
	require.NoError(t, m.Up(), "apply migrations")
	require.NoError(t, m.Close())

	db, err := persistence.NewDatabase(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{Database: db, Config: cfg.Database}
}

// waitForSQL opens a lib/pq connection, retrying while postgres finishes
// its init restart
func waitForSQL(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return db.PingContext(ctx) == nil
	}, 30*time.Second, 250*time.Millisecond, "postgres never accepted connections")
	return db
}

// Scope is a transaction scope over the test database
func (tdb *TestDB) Scope() uow.Scope {
	return persistence.NewGormTransactionScope(tdb.DB, persistence.WithLockTimeout(tdb.Config.LockTimeout))
}
