package trade

import (
	"fmt"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending           PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusSent              PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusFullyReceived     PurchaseOrderStatus = "FULLY_RECEIVED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
	PurchaseOrderStatusRejected          PurchaseOrderStatus = "REJECTED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusSent, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusFullyReceived, PurchaseOrderStatusCancelled, PurchaseOrderStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no transition leaves
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusFullyReceived || s == PurchaseOrderStatusCancelled || s == PurchaseOrderStatusRejected
}

// IsClosed returns true if the order was cancelled or rejected
func (s PurchaseOrderStatus) IsClosed() bool {
	return s == PurchaseOrderStatusCancelled || s == PurchaseOrderStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusPartiallyReceived ||
			target == PurchaseOrderStatusFullyReceived || target.IsClosed()
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusFullyReceived || target.IsClosed()
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusFullyReceived ||
			target == PurchaseOrderStatusSent || target.IsClosed()
	case PurchaseOrderStatusFullyReceived:
		// only receipt deletion moves a fully received order back
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusSent
	}
	return false
}

// CanReceive returns true if new receipts are accepted in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return !s.IsTerminal()
}

// PurchaseOrderLine is one ordered inventory item. Its received and invoiced
// quantities are written only by receiving and invoice matching.
type PurchaseOrderLine struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	InventoryItemID  uuid.UUID
	Description      string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	QuantityInvoiced decimal.Decimal
	UnitPrice        decimal.Decimal
	Amount           decimal.Decimal // QuantityOrdered * UnitPrice
	ReceivedComplete bool
	InvoicedComplete bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewPurchaseOrderLine creates a new order line
func NewPurchaseOrderLine(orderID, itemID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Inventory item ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	if err := shared.CheckScale("Ordered quantity", quantity); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("Unit price", unitPrice); err != nil {
		return nil, err
	}

	now := time.Now()
	return &PurchaseOrderLine{
		ID:               uuid.New(),
		OrderID:          orderID,
		InventoryItemID:  itemID,
		Description:      description,
		QuantityOrdered:  quantity,
		QuantityReceived: decimal.Zero,
		QuantityInvoiced: decimal.Zero,
		UnitPrice:        unitPrice,
		Amount:           shared.RoundAmount(quantity.Mul(unitPrice)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// RemainingQuantity returns the quantity still to be received
func (l *PurchaseOrderLine) RemainingQuantity() decimal.Decimal {
	remaining := l.QuantityOrdered.Sub(l.QuantityReceived)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.QuantityReceived.GreaterThanOrEqual(l.QuantityOrdered)
}

// IsFullyInvoiced returns true if the invoiced quantity reached the ordered quantity
func (l *PurchaseOrderLine) IsFullyInvoiced() bool {
	return l.QuantityInvoiced.GreaterThanOrEqual(l.QuantityOrdered)
}

func (l *PurchaseOrderLine) refreshFlags() {
	l.ReceivedComplete = l.IsFullyReceived()
	l.InvoicedComplete = l.IsFullyInvoiced()
	l.UpdatedAt = time.Now()
}

// PurchaseOrder is the aggregate root of the order ledger. Status after
// sending is derived from the lines' received quantities.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber      string
	SupplierID       uuid.UUID
	Status           PurchaseOrderStatus
	Lines            []PurchaseOrderLine
	AmountOrdered    decimal.Decimal
	AmountReceived   decimal.Decimal
	AmountInvoiced   decimal.Decimal
	TotalReceivedQty decimal.Decimal
	Invoiced         bool
	Notes            string
	SentAt           *time.Time
	ClosedAt         *time.Time
	CloseReason      string
}

// NewPurchaseOrder creates a new purchase order in PENDING status
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewValidationError("Order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID cannot be empty")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		Status:            PurchaseOrderStatusPending,
		Lines:             make([]PurchaseOrderLine, 0),
		AmountOrdered:     decimal.Zero,
		AmountReceived:    decimal.Zero,
		AmountInvoiced:    decimal.Zero,
		TotalReceivedQty:  decimal.Zero,
	}, nil
}

// AddLine adds a line to a PENDING order
func (o *PurchaseOrder) AddLine(itemID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if o.Status != PurchaseOrderStatusPending {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("Cannot add lines to order in %s status", o.Status))
	}
	for _, l := range o.Lines {
		if l.InventoryItemID == itemID {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %s is already on the order", itemID))
		}
	}

	line, err := NewPurchaseOrderLine(o.ID, itemID, description, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateAmountOrdered()
	o.IncrementVersion()
	return &o.Lines[len(o.Lines)-1], nil
}

// Send moves a PENDING order to SENT
func (o *PurchaseOrder) Send() error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot send order in %s status", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewValidationError("Cannot send order without lines")
	}

	if err := o.transitionTo(PurchaseOrderStatusSent); err != nil {
		return err
	}
	now := time.Now()
	o.SentAt = &now
	o.IncrementVersion()
	return nil
}

// Cancel closes the order as CANCELLED
func (o *PurchaseOrder) Cancel(reason string) error {
	return o.close(PurchaseOrderStatusCancelled, reason)
}

// Reject closes the order as REJECTED
func (o *PurchaseOrder) Reject(reason string) error {
	return o.close(PurchaseOrderStatusRejected, reason)
}

func (o *PurchaseOrder) close(target PurchaseOrderStatus, reason string) error {
	if err := o.transitionTo(target); err != nil {
		return err
	}
	now := time.Now()
	o.ClosedAt = &now
	o.CloseReason = reason
	o.IncrementVersion()
	return nil
}

// transitionTo is the only place Status is assigned after creation
func (o *PurchaseOrder) transitionTo(target PurchaseOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	return nil
}

// EnsureReceivable fails if the order does not accept receipts
func (o *PurchaseOrder) EnsureReceivable() error {
	if !o.Status.CanReceive() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot receive goods for order %s in %s status", o.OrderNumber, o.Status))
	}
	return nil
}

// ReceiveLine records quantity received on one line at the receipt price.
// Quantity must be positive and no more than the line's remaining quantity.
func (o *PurchaseOrder) ReceiveLine(lineID uuid.UUID, quantity, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	line := o.GetLine(lineID)
	if line == nil {
		return nil, shared.NewNotFoundError("purchase order line", lineID)
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Received quantity must be positive")
	}
	if err := shared.CheckScale("Received quantity", quantity); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("Unit price", unitPrice); err != nil {
		return nil, err
	}
	if quantity.GreaterThan(line.RemainingQuantity()) {
		return nil, shared.NewDomainError(shared.CodeOverReceipt,
			fmt.Sprintf("Cannot receive %s on line %s, only %s remaining", quantity, lineID, line.RemainingQuantity()))
	}

	line.QuantityReceived = line.QuantityReceived.Add(quantity)
	line.refreshFlags()
	o.TotalReceivedQty = o.TotalReceivedQty.Add(quantity)
	o.AmountReceived = o.AmountReceived.Add(shared.RoundAmount(quantity.Mul(unitPrice)))
	return line, nil
}

// ReverseReceiptLine undoes ReceiveLine with the same quantity and price
func (o *PurchaseOrder) ReverseReceiptLine(lineID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	line := o.GetLine(lineID)
	if line == nil {
		return shared.NewNotFoundError("purchase order line", lineID)
	}
	if quantity.GreaterThan(line.QuantityReceived) {
		return shared.NewInvalidStateError(
			fmt.Sprintf("Cannot reverse %s on line %s, only %s received", quantity, lineID, line.QuantityReceived))
	}

	line.QuantityReceived = line.QuantityReceived.Sub(quantity)
	line.refreshFlags()
	o.TotalReceivedQty = o.TotalReceivedQty.Sub(quantity)
	o.AmountReceived = o.AmountReceived.Sub(shared.RoundAmount(quantity.Mul(unitPrice)))
	return nil
}

// RefreshReceivingStatus re-derives status from the lines after a receipt
// is created or deleted. Cancelled and rejected orders keep their status.
func (o *PurchaseOrder) RefreshReceivingStatus() error {
	o.IncrementVersion()
	if o.Status.IsClosed() {
		return nil
	}
	derived := o.DeriveReceivingStatus()
	if derived == o.Status {
		return nil
	}
	return o.transitionTo(derived)
}

// DeriveReceivingStatus computes the status implied by the lines:
// all lines complete is FULLY_RECEIVED, nothing received is SENT,
// anything else PARTIALLY_RECEIVED.
func (o *PurchaseOrder) DeriveReceivingStatus() PurchaseOrderStatus {
	if o.isAllLinesReceived() {
		return PurchaseOrderStatusFullyReceived
	}
	if !o.hasReceivedAnything() {
		return PurchaseOrderStatusSent
	}
	return PurchaseOrderStatusPartiallyReceived
}

// AddInvoicedQuantity applies a signed delta to a line's invoiced quantity
// and refreshes the order-level invoiced flag.
func (o *PurchaseOrder) AddInvoicedQuantity(lineID uuid.UUID, delta decimal.Decimal) error {
	line := o.GetLine(lineID)
	if line == nil {
		return shared.NewNotFoundError("purchase order line", lineID)
	}

	next := line.QuantityInvoiced.Add(delta)
	if next.IsNegative() {
		return shared.NewInvalidStateError(
			fmt.Sprintf("Invoiced quantity on line %s cannot go below zero", lineID))
	}

	line.QuantityInvoiced = next
	line.refreshFlags()
	o.Invoiced = o.isAllLinesInvoiced()
	return nil
}

// SetAmountInvoiced stores the invoiced amount summed over non-voided invoices
func (o *PurchaseOrder) SetAmountInvoiced(amount decimal.Decimal) {
	o.AmountInvoiced = amount
	o.Invoiced = o.isAllLinesInvoiced()
	o.IncrementVersion()
}

func (o *PurchaseOrder) recalculateAmountOrdered() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount)
	}
	o.AmountOrdered = total
}

func (o *PurchaseOrder) isAllLinesReceived() bool {
	for _, l := range o.Lines {
		if !l.IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}

func (o *PurchaseOrder) isAllLinesInvoiced() bool {
	for _, l := range o.Lines {
		if !l.IsFullyInvoiced() {
			return false
		}
	}
	return len(o.Lines) > 0
}

func (o *PurchaseOrder) hasReceivedAnything() bool {
	for _, l := range o.Lines {
		if l.QuantityReceived.IsPositive() {
			return true
		}
	}
	return false
}

// GetLine returns the line with the given ID, or nil
func (o *PurchaseOrder) GetLine(lineID uuid.UUID) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// IsClosed returns true if the order was cancelled or rejected
func (o *PurchaseOrder) IsClosed() bool {
	return o.Status.IsClosed()
}
