package finance

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money paid against one supplier invoice. When a bank account
// is given the payment owns exactly one outflow treasury movement.
type Payment struct {
	shared.BaseEntity
	InvoiceID          uuid.UUID
	Amount             decimal.Decimal
	PaidAt             time.Time
	Method             PaymentMethod
	BankAccountID      *uuid.UUID
	TreasuryMovementID *uuid.UUID
	Reference          string
}

// NewPayment creates a payment
func NewPayment(invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, bankAccountID *uuid.UUID, reference string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if err := shared.CheckScale("Payment amount", amount); err != nil {
		return nil, err
	}
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Unknown payment method " + string(method))
	}
	if bankAccountID != nil && *bankAccountID == uuid.Nil {
		bankAccountID = nil
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     invoiceID,
		Amount:        amount,
		PaidAt:        paidAt,
		Method:        method,
		BankAccountID: bankAccountID,
		Reference:     reference,
	}, nil
}

// LinkMovement records the treasury movement posted for this payment
func (p *Payment) LinkMovement(movementID uuid.UUID) {
	p.TreasuryMovementID = &movementID
}
