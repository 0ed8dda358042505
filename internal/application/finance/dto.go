package finance

import (
	"time"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one invoice line. ID is set when an edit keeps an
// existing line.
type InvoiceLineRequest struct {
	ID              *uuid.UUID      `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	OrderLineID     *uuid.UUID      `json:"order_line_id"`
	ReceiptLineID   *uuid.UUID      `json:"receipt_line_id"`
	Description     string          `json:"description" binding:"max=500"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Taxes           decimal.Decimal `json:"taxes"`
}

func (r InvoiceLineRequest) toInput() finance.LineInput {
	return finance.LineInput{
		ID:              r.ID,
		InventoryItemID: r.InventoryItemID,
		OrderLineID:     r.OrderLineID,
		ReceiptLineID:   r.ReceiptLineID,
		Description:     r.Description,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		Taxes:           r.Taxes,
	}
}

func toInputs(lines []InvoiceLineRequest) []finance.LineInput {
	out := make([]finance.LineInput, len(lines))
	for i, l := range lines {
		out[i] = l.toInput()
	}
	return out
}

// CreateInvoiceRequest represents a request to register a supplier invoice
type CreateInvoiceRequest struct {
	InvoiceNumber   string               `json:"invoice_number" binding:"required,max=50"`
	SupplierID      uuid.UUID            `json:"supplier_id" binding:"required"`
	PurchaseOrderID *uuid.UUID           `json:"purchase_order_id"`
	IssueDate       *time.Time           `json:"issue_date"`
	DueDate         *time.Time           `json:"due_date"`
	Notes           string               `json:"notes"`
	Lines           []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest replaces the line set of an invoice. Lines with an ID
// update the matching stored line, lines without one are added and stored
// lines that are missing are removed.
type UpdateInvoiceRequest struct {
	DueDate *time.Time           `json:"due_date"`
	Notes   *string              `json:"notes"`
	Lines   []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// VoidInvoiceRequest carries the reason an invoice is voided
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	SupplierID      *uuid.UUID `form:"supplier_id"`
	PurchaseOrderID *uuid.UUID `form:"purchase_order_id"`
	Status          string     `form:"status"`
	Search          string     `form:"search"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f InvoiceListFilter) toDomain() shared.Filter {
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
	if f.PurchaseOrderID != nil {
		filter.Filters["purchase_order_id"] = *f.PurchaseOrderID
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.Search != "" {
		filter.Filters["search"] = f.Search
	}
	return filter
}

// InvoiceResponse represents a supplier invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID             `json:"id"`
	InvoiceNumber     string                `json:"invoice_number"`
	SupplierID        uuid.UUID             `json:"supplier_id"`
	PurchaseOrderID   *uuid.UUID            `json:"purchase_order_id,omitempty"`
	IssueDate         time.Time             `json:"issue_date"`
	DueDate           *time.Time            `json:"due_date,omitempty"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	Taxes             decimal.Decimal       `json:"taxes"`
	TotalPayable      decimal.Decimal       `json:"total_payable"`
	AmountPaid        decimal.Decimal       `json:"amount_paid"`
	OutstandingAmount decimal.Decimal       `json:"outstanding_amount"`
	Status            string                `json:"status"`
	Notes             string                `json:"notes,omitempty"`
	VoidedAt          *time.Time            `json:"voided_at,omitempty"`
	VoidReason        string                `json:"void_reason,omitempty"`
	Lines             []InvoiceLineResponse `json:"lines"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int                   `json:"version"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	OrderLineID     *uuid.UUID      `json:"order_line_id,omitempty"`
	ReceiptLineID   *uuid.UUID      `json:"receipt_line_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Taxes           decimal.Decimal `json:"taxes"`
	Total           decimal.Decimal `json:"total"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(inv *finance.SupplierInvoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i := range inv.Lines {
		l := &inv.Lines[i]
		lines[i] = InvoiceLineResponse{
			ID:              l.ID,
			InventoryItemID: l.InventoryItemID,
			OrderLineID:     l.OrderLineID,
			ReceiptLineID:   l.ReceiptLineID,
			Description:     l.Description,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			Subtotal:        l.Subtotal,
			Taxes:           l.Taxes,
			Total:           l.Total,
		}
	}
	return InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		SupplierID:        inv.SupplierID,
		PurchaseOrderID:   inv.PurchaseOrderID,
		IssueDate:         inv.IssueDate,
		DueDate:           inv.DueDate,
		Subtotal:          inv.Subtotal,
		Taxes:             inv.Taxes,
		TotalPayable:      inv.TotalPayable,
		AmountPaid:        inv.AmountPaid,
		OutstandingAmount: inv.OutstandingAmount(),
		Status:            string(inv.Status),
		Notes:             inv.Notes,
		VoidedAt:          inv.VoidedAt,
		VoidReason:        inv.VoidReason,
		Lines:             lines,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
		Version:           inv.Version,
	}
}

// CreatePaymentRequest represents a payment against one invoice.
// IdempotencyKey comes from the Idempotency-Key header.
type CreatePaymentRequest struct {
	InvoiceID      uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Method         string          `json:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER CHECK CARD OTHER"`
	PaidAt         *time.Time      `json:"paid_at"`
	BankAccountID  *uuid.UUID      `json:"bank_account_id"`
	Reference      string          `json:"reference" binding:"max=100"`
	IdempotencyKey string          `json:"-"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	InvoiceID          uuid.UUID       `json:"invoice_id"`
	Amount             decimal.Decimal `json:"amount"`
	PaidAt             time.Time       `json:"paid_at"`
	Method             string          `json:"method"`
	BankAccountID      *uuid.UUID      `json:"bank_account_id,omitempty"`
	TreasuryMovementID *uuid.UUID      `json:"treasury_movement_id,omitempty"`
	Reference          string          `json:"reference,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 p.ID,
		InvoiceID:          p.InvoiceID,
		Amount:             p.Amount,
		PaidAt:             p.PaidAt,
		Method:             string(p.Method),
		BankAccountID:      p.BankAccountID,
		TreasuryMovementID: p.TreasuryMovementID,
		Reference:          p.Reference,
		CreatedAt:          p.CreatedAt,
	}
}
