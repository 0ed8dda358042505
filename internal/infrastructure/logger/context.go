package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is the per-request logging state carried through context.Context
type scope struct {
	log            *zap.Logger
	requestID      string
	idempotencyKey string
}

func scopeOf(ctx context.Context) scope {
	if s, ok := ctx.Value(scopeKey{}).(scope); ok {
		return s
	}
	return scope{}
}

func withScope(ctx context.Context, mutate func(*scope)) context.Context {
	s := scopeOf(ctx)
	mutate(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches l as the request logger
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return withScope(ctx, func(s *scope) { s.log = l })
}

// FromContext returns the attached logger without correlation fields, or a
// no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l := scopeOf(ctx).log; l != nil {
		return l
	}
	return zap.NewNop()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withScope(ctx, func(s *scope) { s.requestID = requestID })
}

func GetRequestID(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

// WithIdempotencyKey records the caller's Idempotency-Key so payment logs
// can be matched to retries
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return withScope(ctx, func(s *scope) { s.idempotencyKey = key })
}

func GetIdempotencyKey(ctx context.Context) string {
	return scopeOf(ctx).idempotencyKey
}

// GetTraceID returns the active trace ID, or "" outside a recorded span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// L returns the request logger with trace_id, span_id, request_id and
// idempotency_key attached when present.
//
//	logger.L(ctx).Info("receipt posted", zap.String("receipt_id", id))
func L(ctx context.Context) *zap.Logger {
	s := scopeOf(ctx)
	l := s.log
	if l == nil {
		l = zap.NewNop()
	}

	fields := make([]zap.Field, 0, 4)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if s.requestID != "" {
		fields = append(fields, zap.String("request_id", s.requestID))
	}
	if s.idempotencyKey != "" {
		fields = append(fields, zap.String("idempotency_key", s.idempotencyKey))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
