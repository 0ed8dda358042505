package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fieldops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_PingAndClose(t *testing.T) {
	gormDB, mock, _ := newMockDB(t)
	d, err := wrap(gormDB)
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	assert.NoError(t, d.PingContext(context.Background()))
	assert.NoError(t, d.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurePool(t *testing.T) {
	gormDB, _, mockDB := newMockDB(t)
	defer mockDB.Close()
	d, err := wrap(gormDB)
	require.NoError(t, err)

	configurePool(d.sql, config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 2, ConnMaxLifetime: 5, ConnMaxIdleTime: 1})

	assert.Equal(t, 7, d.sql.Stats().MaxOpenConnections)
	assert.GreaterOrEqual(t, d.sql.Stats().WaitDuration, time.Duration(0))
}
