package finance

import (
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput is the caller-supplied content of an invoice line.
// ID is set when editing an existing line.
type LineInput struct {
	ID              *uuid.UUID
	InventoryItemID uuid.UUID
	OrderLineID     *uuid.UUID
	ReceiptLineID   *uuid.UUID
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Taxes           decimal.Decimal
}

func (in LineInput) validate() error {
	if in.InventoryItemID == uuid.Nil {
		return shared.NewValidationError("Inventory item ID cannot be empty")
	}
	if !in.Quantity.IsPositive() {
		return shared.NewValidationError("Invoiced quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	if in.Taxes.IsNegative() {
		return shared.NewValidationError("Taxes cannot be negative")
	}
	for _, v := range []struct {
		field string
		value decimal.Decimal
	}{{"Quantity", in.Quantity}, {"Unit price", in.UnitPrice}, {"Taxes", in.Taxes}} {
		if err := shared.CheckScale(v.field, v.value); err != nil {
			return err
		}
	}
	if in.ReceiptLineID != nil && in.OrderLineID == nil {
		return shared.NewValidationError("A receipt line can only be matched together with its order line")
	}
	return nil
}

// SupplierInvoiceLine is one billed item
type SupplierInvoiceLine struct {
	ID              uuid.UUID
	InvoiceID       uuid.UUID
	InventoryItemID uuid.UUID
	OrderLineID     *uuid.UUID
	ReceiptLineID   *uuid.UUID
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal // Quantity * UnitPrice, rounded to shared.Scale
	Taxes           decimal.Decimal
	Total           decimal.Decimal // Subtotal + Taxes
}

// NewSupplierInvoiceLine builds a line from validated input
func NewSupplierInvoiceLine(invoiceID uuid.UUID, input LineInput) (*SupplierInvoiceLine, error) {
	line := &SupplierInvoiceLine{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
	}
	if err := line.apply(input); err != nil {
		return nil, err
	}
	return line, nil
}

func (l *SupplierInvoiceLine) apply(input LineInput) error {
	if err := input.validate(); err != nil {
		return err
	}
	l.InventoryItemID = input.InventoryItemID
	l.OrderLineID = input.OrderLineID
	l.ReceiptLineID = input.ReceiptLineID
	l.Description = input.Description
	l.Quantity = input.Quantity
	l.UnitPrice = input.UnitPrice
	l.Taxes = input.Taxes
	l.Subtotal = shared.RoundAmount(input.Quantity.Mul(input.UnitPrice))
	l.Total = l.Subtotal.Add(l.Taxes)
	return nil
}
