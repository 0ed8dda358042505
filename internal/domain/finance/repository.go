package finance

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierInvoiceRepository defines the interface for supplier invoice persistence
type SupplierInvoiceRepository interface {
	// FindByID finds an invoice with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierInvoice, error)

	// FindByIDForUpdate loads the invoice and holds its row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SupplierInvoice, error)

	// FindAll lists invoices. Supported filters: supplier_id, purchase_order_id, status.
	FindAll(ctx context.Context, filter shared.Filter) ([]SupplierInvoice, int64, error)

	// Save creates or updates an invoice, creating, updating and deleting
	// line rows to match invoice.Lines
	Save(ctx context.Context, invoice *SupplierInvoice) error

	// Delete removes an invoice and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByNumber checks if a supplier already used an invoice number
	ExistsByNumber(ctx context.Context, supplierID uuid.UUID, invoiceNumber string, excludeID *uuid.UUID) (bool, error)

	// SumSubtotalByOrder sums subtotals of non-voided invoices of an order
	SumSubtotalByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	// CountActiveLinesByReceiptLines counts lines of non-voided invoices
	// matched to any of the given receipt lines
	CountActiveLinesByReceiptLines(ctx context.Context, receiptLineIDs []uuid.UUID) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByInvoice lists payments of an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)

	// Create persists a payment
	Create(ctx context.Context, payment *Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByInvoice removes all payments of an invoice and returns how many were removed
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
}
