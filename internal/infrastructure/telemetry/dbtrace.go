package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracing controls the otelgorm instrumentation of a *gorm.DB
type DBTracing struct {
	Enabled bool
	// IncludeVars puts bound query values into db.statement. Keep it off
	// outside development, payments carry amounts and references.
	IncludeVars   bool
	SlowThreshold time.Duration
	System        string
}

const startedAtKey = "telemetry:started_at"

// InstrumentDB installs otelgorm on db plus a pair of callbacks around each
// statement kind that annotate the span with the affected table, the row
// count, failures and a db.slow_query flag once SlowThreshold is exceeded.
func InstrumentDB(db *gorm.DB, cfg DBTracing, log *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.System)}
	if !cfg.IncludeVars {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("otelgorm: %w", err)
	}

	cb := db.Callback()
	after := annotate(cfg.SlowThreshold)
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("telemetry:start_create", stamp),
		cb.Create().After("gorm:create").Register("telemetry:end_create", after),
		cb.Query().Before("gorm:query").Register("telemetry:start_query", stamp),
		cb.Query().After("gorm:query").Register("telemetry:end_query", after),
		cb.Update().Before("gorm:update").Register("telemetry:start_update", stamp),
		cb.Update().After("gorm:update").Register("telemetry:end_update", after),
		cb.Delete().Before("gorm:delete").Register("telemetry:start_delete", stamp),
		cb.Delete().After("gorm:delete").Register("telemetry:end_delete", after),
		cb.Row().Before("gorm:row").Register("telemetry:start_row", stamp),
		cb.Row().After("gorm:row").Register("telemetry:end_row", after),
		cb.Raw().Before("gorm:raw").Register("telemetry:start_raw", stamp),
		cb.Raw().After("gorm:raw").Register("telemetry:end_raw", after),
	} {
		if err != nil {
			return fmt.Errorf("register db tracing callback: %w", err)
		}
	}

	log.Info("Database tracing enabled",
		zap.String("system", cfg.System),
		zap.Bool("include_vars", cfg.IncludeVars),
		zap.Duration("slow_threshold", cfg.SlowThreshold),
	)
	return nil
}

func stamp(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func annotate(slow time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement.Context == nil {
			return
		}
		span := trace.SpanFromContext(db.Statement.Context)
		if !span.IsRecording() {
			return
		}

		attrs := []attribute.KeyValue{attribute.Int64("db.rows_affected", db.Statement.RowsAffected)}
		if db.Statement.Table != "" {
			attrs = append(attrs, attribute.String("db.sql.table", db.Statement.Table))
		}
		if v, ok := db.InstanceGet(startedAtKey); ok {
			if took := time.Since(v.(time.Time)); slow > 0 && took > slow {
				attrs = append(attrs,
					attribute.Bool("db.slow_query", true),
					attribute.Int64("db.duration_ms", took.Milliseconds()),
				)
			}
		}
		span.SetAttributes(attrs...)

		if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
}
