// Package common holds the error and value helpers every application
// service shares.
package common

import (
	"context"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Fail records err on span and logs it, then returns it unchanged.
// Domain errors are expected outcomes and log at warn with their code.
func Fail(ctx context.Context, span trace.Span, msg string, err error) error {
	telemetry.RecordError(span, err)
	if code := shared.ErrorCode(err); code != "" {
		span.SetAttributes(telemetry.AttrErrorCode.String(code))
		logger.L(ctx).Warn(msg, zap.String("code", code), zap.Error(err))
		return err
	}
	logger.L(ctx).Error(msg, zap.Error(err))
	return err
}

// TimeOrZero dereferences t, or returns the zero time for nil
func TimeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
