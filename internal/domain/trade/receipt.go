package trade

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptStatus tells whether a receipt completed its order
type ReceiptStatus string

const (
	ReceiptStatusPartial  ReceiptStatus = "PARTIAL"
	ReceiptStatusComplete ReceiptStatus = "COMPLETE"
)

// ReceiptLine is the quantity of one order line delivered in a receipt.
// Each line owns exactly one inventory entry.
type ReceiptLine struct {
	ID                 uuid.UUID
	ReceiptID          uuid.UUID
	OrderLineID        uuid.UUID
	InventoryItemID    uuid.UUID
	Quantity           decimal.Decimal
	UnitPriceAtReceipt decimal.Decimal
	InventoryEntryID   uuid.UUID
}

// Amount returns Quantity * UnitPriceAtReceipt at the stored scale
func (l ReceiptLine) Amount() decimal.Decimal {
	return shared.RoundAmount(l.Quantity.Mul(l.UnitPriceAtReceipt))
}

// Receipt records one physical delivery against a purchase order.
// Receipts are never edited; deleting one reverses all its effects.
type Receipt struct {
	shared.BaseEntity
	ReceiptNumber   string
	PurchaseOrderID uuid.UUID
	Status          ReceiptStatus
	ReceivedAt      time.Time
	RecordedBy      *uuid.UUID
	Notes           string
	Lines           []ReceiptLine
}

// NewReceipt creates an empty receipt for an order
func NewReceipt(receiptNumber string, orderID uuid.UUID, receivedAt time.Time, recordedBy *uuid.UUID, notes string) (*Receipt, error) {
	if receiptNumber == "" {
		return nil, shared.NewValidationError("Receipt number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("Purchase order ID cannot be empty")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	return &Receipt{
		BaseEntity:      shared.NewBaseEntity(),
		ReceiptNumber:   receiptNumber,
		PurchaseOrderID: orderID,
		Status:          ReceiptStatusPartial,
		ReceivedAt:      receivedAt,
		RecordedBy:      recordedBy,
		Notes:           notes,
		Lines:           make([]ReceiptLine, 0),
	}, nil
}

// AddLine appends a line. The same order line may appear only once per receipt.
func (r *Receipt) AddLine(orderLine *PurchaseOrderLine, quantity, unitPrice decimal.Decimal, entryID uuid.UUID) (*ReceiptLine, error) {
	for _, l := range r.Lines {
		if l.OrderLineID == orderLine.ID {
			return nil, shared.NewValidationError("Order line " + orderLine.ID.String() + " appears more than once in receipt")
		}
	}

	r.Lines = append(r.Lines, ReceiptLine{
		ID:                 uuid.New(),
		ReceiptID:          r.ID,
		OrderLineID:        orderLine.ID,
		InventoryItemID:    orderLine.InventoryItemID,
		Quantity:           quantity,
		UnitPriceAtReceipt: unitPrice,
		InventoryEntryID:   entryID,
	})
	return &r.Lines[len(r.Lines)-1], nil
}

// MarkCompleteIf sets COMPLETE when the order ended up fully received
func (r *Receipt) MarkCompleteIf(order *PurchaseOrder) {
	if order.Status == PurchaseOrderStatusFullyReceived {
		r.Status = ReceiptStatusComplete
	} else {
		r.Status = ReceiptStatusPartial
	}
}

// TotalAmount returns the receipt value at receipt prices
func (r *Receipt) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// LineIDs returns the IDs of all receipt lines
func (r *Receipt) LineIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Lines))
	for _, l := range r.Lines {
		ids = append(ids, l.ID)
	}
	return ids
}
