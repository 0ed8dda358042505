package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv removes every FIELDOPS_* variable for the duration of the test
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix+"_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func loadWith(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	isolateEnv(t)
	for k, v := range env {
		t.Setenv(EnvPrefix+"_"+k, v)
	}
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith(t, nil)
	require.NoError(t, err)

	assert.Equal(t, "fieldops-backend", cfg.App.Name)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.App.Port)

	db := cfg.Database
	assert.Equal(t, "postgres://postgres:@localhost:5432/fieldops?sslmode=disable", db.DSN())
	assert.Equal(t, 25, db.MaxOpenConns)
	assert.Equal(t, 5, db.MaxIdleConns)
	assert.Equal(t, 5*time.Second, db.LockTimeout)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())

	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, time.Minute, cfg.Telemetry.MetricsInterval)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"APP_ENV":                 "staging",
		"DATABASE_HOST":           "ledger-db.internal",
		"DATABASE_PORT":           "6543",
		"DATABASE_DBNAME":         "ledger",
		"DATABASE_SSLMODE":        "verify-full",
		"DATABASE_MAX_OPEN_CONNS": "40",
		"DATABASE_MAX_IDLE_CONNS": "8",
		"DATABASE_LOCK_TIMEOUT":   "750ms",
		"REDIS_ENABLED":           "true",
		"REDIS_IDEMPOTENCY_TTL":   "2h",
		"HTTP_CORS_ALLOW_ORIGINS": "https://ops.example,https://admin.example",
		"TELEMETRY_ENABLED":       "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "ledger-db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "ledger", cfg.Database.DBName)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.Equal(t, 8, cfg.Database.MaxIdleConns)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.LockTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, []string{"https://ops.example", "https://admin.example"}, cfg.HTTP.CORSAllowOrigins)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Contains(t, cfg.Database.DSN(), "sslmode=verify-full")
}

func TestLoad_Rejections(t *testing.T) {
	production := map[string]string{
		"APP_ENV":           "production",
		"DATABASE_PASSWORD": "s3cret",
		"DATABASE_SSLMODE":  "require",
	}
	with := func(base map[string]string, kv ...string) map[string]string {
		out := make(map[string]string, len(base)+len(kv)/2)
		for k, v := range base {
			out[k] = v
		}
		for i := 0; i+1 < len(kv); i += 2 {
			out[kv[i]] = kv[i+1]
		}
		return out
	}

	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{"idle above open", with(nil, "DATABASE_MAX_OPEN_CONNS", "10", "DATABASE_MAX_IDLE_CONNS", "20"), []string{"max_idle_conns (20) cannot exceed"}},
		{"zero open conns", with(nil, "DATABASE_MAX_OPEN_CONNS", "0"), []string{"max_open_conns must be positive"}},
		{"negative idle conns", with(nil, "DATABASE_MAX_IDLE_CONNS", "-1"), []string{"max_idle_conns cannot be negative"}},
		{"short idempotency ttl", with(nil, "REDIS_IDEMPOTENCY_TTL", "10s"), []string{"idempotency_ttl"}},
		{"sampling ratio above one", with(nil, "TELEMETRY_SAMPLING_RATIO", "1.5"), []string{"sampling_ratio"}},
		{"every violation reported", with(nil, "DATABASE_LOCK_TIMEOUT", "-1s", "TELEMETRY_SAMPLING_RATIO", "2"), []string{"lock_timeout", "sampling_ratio"}},
		{"production without password", with(production, "DATABASE_PASSWORD", ""), []string{"database.password is required in production"}},
		{"production without tls", with(production, "DATABASE_SSLMODE", "disable"), []string{"sslmode cannot be 'disable'"}},
		{"production logging bound values", with(production, "TELEMETRY_DB_LOG_FULL_SQL", "true"), []string{"db_log_full_sql"}},
		{"production wildcard cors", with(production, "HTTP_CORS_ALLOW_ORIGINS", "*"), []string{"cors_allow_origins"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadWith(t, tt.env)
			require.Error(t, err)
			for _, want := range tt.want {
				assert.Contains(t, err.Error(), want)
			}
		})
	}

	t.Run("valid production", func(t *testing.T) {
		cfg, err := loadWith(t, production)
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.example",
		Port:     5432,
		User:     "ledger",
		Password: "p@ss#word/1",
		DBName:   "recon",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://ledger:"))
	assert.Contains(t, dsn, "p%40ss%23word%2F1@db.example:5432/recon")
	assert.True(t, strings.HasSuffix(dsn, "?sslmode=require"))
	assert.Equal(t, dsn, cfg.URL())
}
