package trade

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate loads the order and holds its row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll lists purchase orders. Supported filters: supplier_id, status.
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, int64, error)

	// Save creates or updates a purchase order and its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// GenerateOrderNumber returns the next order number (PO-YYYY-NNNNN)
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindByOrder lists the receipts of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Receipt, error)

	// FindLineByID finds a single receipt line
	FindLineByID(ctx context.Context, lineID uuid.UUID) (*ReceiptLine, error)

	// Create persists a new receipt and its lines
	Create(ctx context.Context, receipt *Receipt) error

	// Delete removes a receipt and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateReceiptNumber returns the next receipt number (GR-YYYY-NNNNN)
	GenerateReceiptNumber(ctx context.Context) (string, error)
}
