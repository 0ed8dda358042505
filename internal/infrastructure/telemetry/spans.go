package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/fieldops/backend"

// Attribute keys set on use-case spans
const (
	AttrOrderID     attribute.Key = "purchase_order_id"
	AttrReceiptID   attribute.Key = "receipt_id"
	AttrInvoiceID   attribute.Key = "supplier_invoice_id"
	AttrPaymentID   attribute.Key = "payment_id"
	AttrItemID      attribute.Key = "inventory_item_id"
	AttrAccountID   attribute.Key = "bank_account_id"
	AttrMovementID  attribute.Key = "treasury_movement_id"
	AttrLineCount   attribute.Key = "line_count"
	AttrAmount      attribute.Key = "amount"
	AttrErrorCode   attribute.Key = "error_code"
	AttrIdempotency attribute.Key = "idempotency_key"
)

// StartSpan opens an internal span named "component.operation" on the
// global tracer provider. The caller ends it.
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError attaches err to span as an exception event and sets the
// span status to Error. A nil span or error is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
