package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, Config{CollectorEndpoint: "localhost:14317", ServiceName: "fieldops"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.MeterProvider())
	assert.NoError(t, p.Shutdown(ctx))
}

func TestSetup_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("exporters dial a collector")
	}
	ctx := context.Background()
	p, err := Setup(ctx, Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		Insecure:          true,
		ServiceName:       "fieldops",
		SamplingRatio:     0.5,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, p.Enabled())
	assert.NotNil(t, p.MeterProvider())

	_, span := StartSpan(ctx, "receiving", "create")
	span.End()

	// nothing listens on the endpoint, so only the call itself is exercised
	_ = p.Shutdown(ctx)
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  sdktrace.Sampler
	}{
		{1, sdktrace.ParentBased(sdktrace.AlwaysSample())},
		{3, sdktrace.ParentBased(sdktrace.AlwaysSample())},
		{0, sdktrace.ParentBased(sdktrace.NeverSample())},
		{-1, sdktrace.ParentBased(sdktrace.NeverSample())},
		{0.25, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25))},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want.Description(), samplerFor(tt.ratio).Description())
	}
}
