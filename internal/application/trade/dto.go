package trade

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID                        `json:"supplier_id" binding:"required"`
	Notes      string                           `json:"notes"`
	Lines      []CreatePurchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreatePurchaseOrderLineRequest represents one ordered item
type CreatePurchaseOrderLineRequest struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// ClosePurchaseOrderRequest carries the reason an order is cancelled or rejected
type ClosePurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseOrderListFilter represents filter options for the order list
type PurchaseOrderListFilter struct {
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f PurchaseOrderListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	if f.SupplierID != nil {
		filter.Filters["supplier_id"] = *f.SupplierID
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Search != "" {
		filter.Filters["search"] = f.Search
	}
	return filter
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID               uuid.UUID                   `json:"id"`
	OrderNumber      string                      `json:"order_number"`
	SupplierID       uuid.UUID                   `json:"supplier_id"`
	Status           string                      `json:"status"`
	AmountOrdered    decimal.Decimal             `json:"amount_ordered"`
	AmountReceived   decimal.Decimal             `json:"amount_received"`
	AmountInvoiced   decimal.Decimal             `json:"amount_invoiced"`
	TotalReceivedQty decimal.Decimal             `json:"total_received_qty"`
	Invoiced         bool                        `json:"invoiced"`
	Notes            string                      `json:"notes,omitempty"`
	SentAt           *time.Time                  `json:"sent_at,omitempty"`
	ClosedAt         *time.Time                  `json:"closed_at,omitempty"`
	CloseReason      string                      `json:"close_reason,omitempty"`
	Lines            []PurchaseOrderLineResponse `json:"lines"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	Version          int                         `json:"version"`
}

// PurchaseOrderLineResponse represents an order line in API responses
type PurchaseOrderLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	InventoryItemID   uuid.UUID       `json:"inventory_item_id"`
	Description       string          `json:"description,omitempty"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	QuantityInvoiced  decimal.Decimal `json:"quantity_invoiced"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	ReceivedComplete  bool            `json:"received_complete"`
	InvoicedComplete  bool            `json:"invoiced_complete"`
}

// ToPurchaseOrderResponse converts a domain order to a response DTO
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines[i] = PurchaseOrderLineResponse{
			ID:                l.ID,
			InventoryItemID:   l.InventoryItemID,
			Description:       l.Description,
			QuantityOrdered:   l.QuantityOrdered,
			QuantityReceived:  l.QuantityReceived,
			QuantityInvoiced:  l.QuantityInvoiced,
			RemainingQuantity: l.RemainingQuantity(),
			UnitPrice:         l.UnitPrice,
			Amount:            l.Amount,
			ReceivedComplete:  l.ReceivedComplete,
			InvoicedComplete:  l.InvoicedComplete,
		}
	}
	return PurchaseOrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		SupplierID:       o.SupplierID,
		Status:           string(o.Status),
		AmountOrdered:    o.AmountOrdered,
		AmountReceived:   o.AmountReceived,
		AmountInvoiced:   o.AmountInvoiced,
		TotalReceivedQty: o.TotalReceivedQty,
		Invoiced:         o.Invoiced,
		Notes:            o.Notes,
		SentAt:           o.SentAt,
		ClosedAt:         o.ClosedAt,
		CloseReason:      o.CloseReason,
		Lines:            lines,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ReconcileReport lists every stored aggregate that disagrees with the
// value re-derived from receipts and invoices
type ReconcileReport struct {
	OrderID    uuid.UUID `json:"order_id"`
	Consistent bool      `json:"consistent"`
	Drifts     []Drift   `json:"drifts"`
}

// Drift is one stored value that differs from its derived value
type Drift struct {
	Field       string     `json:"field"`
	OrderLineID *uuid.UUID `json:"order_line_id,omitempty"`
	Stored      string     `json:"stored"`
	Derived     string     `json:"derived"`
}

// CreateReceiptRequest represents one delivery against a purchase order
type CreateReceiptRequest struct {
	PurchaseOrderID uuid.UUID            `json:"purchase_order_id" binding:"required"`
	ReceivedAt      *time.Time           `json:"received_at"`
	RecordedBy      *uuid.UUID           `json:"recorded_by"`
	Notes           string               `json:"notes"`
	Lines           []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiptLineRequest is the quantity delivered for one order line.
// UnitPrice defaults to the order line's price.
type ReceiptLineRequest struct {
	OrderLineID uuid.UUID        `json:"order_line_id" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID              uuid.UUID             `json:"id"`
	ReceiptNumber   string                `json:"receipt_number"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	Status          string                `json:"status"`
	ReceivedAt      time.Time             `json:"received_at"`
	RecordedBy      *uuid.UUID            `json:"recorded_by,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	Lines           []ReceiptLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"created_at"`
}

// ReceiptLineResponse represents a receipt line in API responses
type ReceiptLineResponse struct {
	ID                 uuid.UUID       `json:"id"`
	OrderLineID        uuid.UUID       `json:"order_line_id"`
	InventoryItemID    uuid.UUID       `json:"inventory_item_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPriceAtReceipt decimal.Decimal `json:"unit_price_at_receipt"`
	Amount             decimal.Decimal `json:"amount"`
	InventoryEntryID   uuid.UUID       `json:"inventory_entry_id"`
}

// ToReceiptResponse converts a domain receipt to a response DTO
func ToReceiptResponse(r *trade.Receipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = ReceiptLineResponse{
			ID:                 l.ID,
			OrderLineID:        l.OrderLineID,
			InventoryItemID:    l.InventoryItemID,
			Quantity:           l.Quantity,
			UnitPriceAtReceipt: l.UnitPriceAtReceipt,
			Amount:             l.Amount(),
			InventoryEntryID:   l.InventoryEntryID,
		}
	}
	return ReceiptResponse{
		ID:              r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		Status:          string(r.Status),
		ReceivedAt:      r.ReceivedAt,
		RecordedBy:      r.RecordedBy,
		Notes:           r.Notes,
		TotalAmount:     r.TotalAmount(),
		Lines:           lines,
		CreatedAt:       r.CreatedAt,
	}
}
