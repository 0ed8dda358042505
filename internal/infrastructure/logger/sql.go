package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// SQLLoggerConfig tunes which statements reach the log
type SQLLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// LogNotFound also reports gorm.ErrRecordNotFound, which lookups return
	// routinely and are usually mapped to a domain error
	LogNotFound bool
}

// SQLLogger routes GORM's statement log into zap, tagged with the request
// and trace ids of the calling context. Slow row-lock statements are told
// apart from other slow queries so lock contention is visible in the log.
type SQLLogger struct {
	log *zap.Logger
	cfg SQLLoggerConfig
}

var _ gormlogger.Interface = (*SQLLogger)(nil)

func NewSQLLogger(log *zap.Logger, cfg SQLLoggerConfig) *SQLLogger {
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = defaultSlowThreshold
	}
	return &SQLLogger{log: log.Named("sql"), cfg: cfg}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.cfg.Level = level
	return &cp
}

func (l *SQLLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.cfg.Level >= gormlogger.Info {
		l.with(ctx).Sugar().Infof(msg, args...)
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.cfg.Level >= gormlogger.Warn {
		l.with(ctx).Sugar().Warnf(msg, args...)
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.cfg.Level >= gormlogger.Error {
		l.with(ctx).Sugar().Errorf(msg, args...)
	}
}

// Trace logs one executed statement. Failures log at error, statements over
// the slow threshold at warn and everything else at debug.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	if err != nil && !l.cfg.LogNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	stmt, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", stmt),
	}
	log := l.with(ctx)

	switch {
	case err != nil:
		if l.cfg.Level >= gormlogger.Error {
			log.Error("SQL failed", append(fields, zap.Error(err))...)
		}
	case elapsed > l.cfg.SlowThreshold:
		if l.cfg.Level < gormlogger.Warn {
			return
		}
		msg := "Slow SQL"
		if isRowLock(stmt) {
			msg = "Slow row lock"
		}
		log.Warn(msg, append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))...)
	case l.cfg.Level >= gormlogger.Info:
		log.Debug("SQL", fields...)
	}
}

func (l *SQLLogger) with(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	if len(fields) == 0 {
		return l.log
	}
	return l.log.With(fields...)
}

func isRowLock(stmt string) bool {
	return strings.Contains(strings.ToUpper(stmt), "FOR UPDATE")
}

// MapGormLogLevel maps an application log level onto GORM's levels
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
