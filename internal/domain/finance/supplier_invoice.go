package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of a supplier invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"        // nothing paid
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // 0 < paid < total
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // paid >= total
	InvoiceStatusVoided        InvoiceStatus = "VOIDED"         // terminal, excluded from order totals
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartiallyPaid
}

// SupplierInvoice is a supplier's bill, optionally matched to a purchase order.
// AmountPaid never exceeds TotalPayable.
type SupplierInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string
	SupplierID      uuid.UUID
	PurchaseOrderID *uuid.UUID
	IssueDate       time.Time
	DueDate         *time.Time
	Subtotal        decimal.Decimal
	Taxes           decimal.Decimal
	TotalPayable    decimal.Decimal
	AmountPaid      decimal.Decimal
	Status          InvoiceStatus
	Notes           string
	Lines           []SupplierInvoiceLine
	VoidedAt        *time.Time
	VoidReason      string
}

// NewSupplierInvoice creates an empty PENDING invoice
func NewSupplierInvoice(invoiceNumber string, supplierID uuid.UUID, orderID *uuid.UUID, issueDate time.Time, dueDate *time.Time) (*SupplierInvoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewValidationError("Invoice number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID cannot be empty")
	}
	if orderID != nil && *orderID == uuid.Nil {
		orderID = nil
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return nil, shared.NewValidationError("Due date cannot be before issue date")
	}

	return &SupplierInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		SupplierID:        supplierID,
		PurchaseOrderID:   orderID,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Subtotal:          decimal.Zero,
		Taxes:             decimal.Zero,
		TotalPayable:      decimal.Zero,
		AmountPaid:        decimal.Zero,
		Status:            InvoiceStatusPending,
		Lines:             make([]SupplierInvoiceLine, 0),
	}, nil
}

// AddLine appends a new line built from input
func (inv *SupplierInvoice) AddLine(input LineInput) (*SupplierInvoiceLine, error) {
	line, err := NewSupplierInvoiceLine(inv.ID, input)
	if err != nil {
		return nil, err
	}
	inv.Lines = append(inv.Lines, *line)
	return &inv.Lines[len(inv.Lines)-1], nil
}

// UpdateLine overwrites an existing line in place
func (inv *SupplierInvoice) UpdateLine(lineID uuid.UUID, input LineInput) error {
	line := inv.GetLine(lineID)
	if line == nil {
		return shared.NewNotFoundError("invoice line", lineID)
	}
	return line.apply(input)
}

// RemoveLine drops a line
func (inv *SupplierInvoice) RemoveLine(lineID uuid.UUID) error {
	for i := range inv.Lines {
		if inv.Lines[i].ID == lineID {
			inv.Lines = append(inv.Lines[:i], inv.Lines[i+1:]...)
			return nil
		}
	}
	return shared.NewNotFoundError("invoice line", lineID)
}

// GetLine returns the line with the given ID, or nil
func (inv *SupplierInvoice) GetLine(lineID uuid.UUID) *SupplierInvoiceLine {
	for i := range inv.Lines {
		if inv.Lines[i].ID == lineID {
			return &inv.Lines[i]
		}
	}
	return nil
}

// RecalculateTotals rebuilds subtotal, taxes and total from the current lines
// and re-derives the payment status. The new total may not drop below what
// has already been paid.
func (inv *SupplierInvoice) RecalculateTotals() error {
	subtotal, taxes := decimal.Zero, decimal.Zero
	for _, l := range inv.Lines {
		subtotal = subtotal.Add(l.Subtotal)
		taxes = taxes.Add(l.Taxes)
	}
	total := subtotal.Add(taxes)
	if total.LessThan(inv.AmountPaid) {
		return shared.NewDomainError(shared.CodeOverpayment,
			fmt.Sprintf("Invoice total %s would fall below amount already paid %s", total, inv.AmountPaid))
	}

	inv.Subtotal = subtotal
	inv.Taxes = taxes
	inv.TotalPayable = total
	inv.refreshPaymentStatus()
	inv.IncrementVersion()
	return nil
}

// EnsureEditable fails for voided invoices
func (inv *SupplierInvoice) EnsureEditable() error {
	if inv.Status == InvoiceStatusVoided {
		return shared.NewInvalidStateError("Voided invoices cannot be modified")
	}
	return nil
}

// EnsureDeletable allows deletion only while nothing has been paid
func (inv *SupplierInvoice) EnsureDeletable() error {
	if !inv.AmountPaid.IsZero() || inv.Status != InvoiceStatusPending {
		return shared.NewInvalidStateError(
			fmt.Sprintf("Invoice %s in %s status with %s paid cannot be deleted; void it instead", inv.InvoiceNumber, inv.Status, inv.AmountPaid))
	}
	return nil
}

// ApplyPayment adds a payment amount
func (inv *SupplierInvoice) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be positive")
	}
	if inv.Status == InvoiceStatusVoided {
		return shared.NewInvalidStateError("Cannot apply payment to a voided invoice")
	}
	// a paid invoice reports the overpayment rather than its status
	if inv.AmountPaid.Add(amount).GreaterThan(inv.TotalPayable) {
		return shared.NewDomainError(shared.CodeOverpayment,
			fmt.Sprintf("Payment %s exceeds outstanding amount %s", amount, inv.OutstandingAmount()))
	}
	if !inv.Status.CanApplyPayment() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.refreshPaymentStatus()
	inv.IncrementVersion()
	return nil
}

// RevertPayment removes a previously applied payment amount
func (inv *SupplierInvoice) RevertPayment(amount decimal.Decimal) error {
	if amount.GreaterThan(inv.AmountPaid) {
		return shared.NewInvalidStateError(
			fmt.Sprintf("Cannot revert %s, only %s paid", amount, inv.AmountPaid))
	}

	inv.AmountPaid = inv.AmountPaid.Sub(amount)
	inv.refreshPaymentStatus()
	inv.IncrementVersion()
	return nil
}

// Void marks the invoice as VOIDED. Payments must be removed first.
func (inv *SupplierInvoice) Void(reason string) error {
	if inv.Status == InvoiceStatusVoided {
		return shared.NewInvalidStateError("Invoice is already voided")
	}
	if inv.AmountPaid.IsPositive() {
		return shared.NewInvalidStateError("Cannot void invoice with payments; delete the payments first")
	}

	now := time.Now()
	inv.Status = InvoiceStatusVoided
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.IncrementVersion()
	return nil
}

// DerivePaymentStatus computes the status implied by AmountPaid and TotalPayable
func (inv *SupplierInvoice) DerivePaymentStatus() InvoiceStatus {
	if inv.Status == InvoiceStatusVoided {
		return InvoiceStatusVoided
	}
	switch {
	case inv.AmountPaid.IsZero():
		return InvoiceStatusPending
	case inv.AmountPaid.GreaterThanOrEqual(inv.TotalPayable):
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartiallyPaid
	}
}

func (inv *SupplierInvoice) refreshPaymentStatus() {
	inv.Status = inv.DerivePaymentStatus()
}

// OutstandingAmount returns TotalPayable - AmountPaid
func (inv *SupplierInvoice) OutstandingAmount() decimal.Decimal {
	return inv.TotalPayable.Sub(inv.AmountPaid)
}

// IsVoided returns true for voided invoices
func (inv *SupplierInvoice) IsVoided() bool {
	return inv.Status == InvoiceStatusVoided
}

// OrderLineQuantities sums invoiced quantity per linked order line
func (inv *SupplierInvoice) OrderLineQuantities() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, l := range inv.Lines {
		if l.OrderLineID == nil {
			continue
		}
		out[*l.OrderLineID] = out[*l.OrderLineID].Add(l.Quantity)
	}
	return out
}
