package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// latencyBuckets are histogram boundaries in seconds
var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics counts requests by method, route and status and records their
// latency by method and route. Unmatched paths share the "unmatched" route so
// scanners cannot inflate cardinality. A nil provider yields a no-op.
func HTTPMetrics(mp metric.MeterProvider) gin.HandlerFunc {
	noop := func(c *gin.Context) { c.Next() }
	if mp == nil {
		return noop
	}

	meter := mp.Meter("fieldops/http")
	total, err := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return noop
	}
	latency, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	if err != nil {
		return noop
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		common := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		ctx := c.Request.Context()
		total.Add(ctx, 1, metric.WithAttributes(append(common, attribute.Int("http.status_code", c.Writer.Status()))...))
		latency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(common...))
	}
}
