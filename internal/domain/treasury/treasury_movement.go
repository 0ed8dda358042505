package treasury

import (
	"bytes"
	"sort"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a treasury movement
type MovementType string

const (
	MovementTypeInflow   MovementType = "INFLOW"
	MovementTypeOutflow  MovementType = "OUTFLOW"
	MovementTypeTransfer MovementType = "TRANSFER"
)

// IsValid checks if the type is known
func (t MovementType) IsValid() bool {
	return t == MovementTypeInflow || t == MovementTypeOutflow || t == MovementTypeTransfer
}

// BalanceDelta is the signed effect of a movement on one account
type BalanceDelta struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// TreasuryMovement moves money into, out of or between bank accounts
type TreasuryMovement struct {
	shared.BaseEntity
	Type                 MovementType
	Amount               decimal.Decimal
	SourceAccountID      *uuid.UUID
	DestinationAccountID *uuid.UUID
	PaymentID            *uuid.UUID
	Reference            string
	Description          string
	OccurredAt           time.Time
}

// NewTreasuryMovement validates and creates a movement.
// INFLOW needs a destination, OUTFLOW a source, TRANSFER two distinct accounts.
func NewTreasuryMovement(t MovementType, amount decimal.Decimal, source, destination *uuid.UUID, reference string, occurredAt time.Time) (*TreasuryMovement, error) {
	m := &TreasuryMovement{BaseEntity: shared.NewBaseEntity()}
	if err := m.set(t, amount, source, destination, reference, occurredAt); err != nil {
		return nil, err
	}
	return m, nil
}

// NewPaymentOutflow creates the outflow posted for a supplier payment
func NewPaymentOutflow(paymentID, accountID uuid.UUID, amount decimal.Decimal, reference string, occurredAt time.Time) (*TreasuryMovement, error) {
	m, err := NewTreasuryMovement(MovementTypeOutflow, amount, &accountID, nil, reference, occurredAt)
	if err != nil {
		return nil, err
	}
	m.PaymentID = &paymentID
	m.Description = "Supplier payment"
	return m, nil
}

// Update replaces the movement's content. The caller reverses Effects()
// taken before the update and applies Effects() taken after it.
func (m *TreasuryMovement) Update(t MovementType, amount decimal.Decimal, source, destination *uuid.UUID, reference string, occurredAt time.Time) error {
	if err := m.EnsureManual(); err != nil {
		return err
	}
	if err := m.set(t, amount, source, destination, reference, occurredAt); err != nil {
		return err
	}
	m.Touch()
	return nil
}

func (m *TreasuryMovement) set(t MovementType, amount decimal.Decimal, source, destination *uuid.UUID, reference string, occurredAt time.Time) error {
	if !t.IsValid() {
		return shared.NewValidationError("Unknown movement type " + string(t))
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Movement amount must be positive")
	}
	if err := shared.CheckScale("Movement amount", amount); err != nil {
		return err
	}
	source, destination = normalize(source), normalize(destination)

	switch t {
	case MovementTypeInflow:
		if destination == nil {
			return shared.NewValidationError("Inflow requires a destination account")
		}
		source = nil
	case MovementTypeOutflow:
		if source == nil {
			return shared.NewValidationError("Outflow requires a source account")
		}
		destination = nil
	case MovementTypeTransfer:
		if source == nil || destination == nil {
			return shared.NewValidationError("Transfer requires source and destination accounts")
		}
		if *source == *destination {
			return shared.NewValidationError("Transfer source and destination must differ")
		}
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	m.Type = t
	m.Amount = amount
	m.SourceAccountID = source
	m.DestinationAccountID = destination
	m.Reference = reference
	m.OccurredAt = occurredAt
	return nil
}

func normalize(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

// Effects returns the balance deltas this movement applies
func (m *TreasuryMovement) Effects() []BalanceDelta {
	var out []BalanceDelta
	if m.SourceAccountID != nil {
		out = append(out, BalanceDelta{AccountID: *m.SourceAccountID, Delta: m.Amount.Neg()})
	}
	if m.DestinationAccountID != nil {
		out = append(out, BalanceDelta{AccountID: *m.DestinationAccountID, Delta: m.Amount})
	}
	return out
}

// InverseEffects returns the deltas that undo Effects
func (m *TreasuryMovement) InverseEffects() []BalanceDelta {
	effects := m.Effects()
	for i := range effects {
		effects[i].Delta = effects[i].Delta.Neg()
	}
	return effects
}

// AccountIDs returns the accounts touched, sorted for lock ordering
func (m *TreasuryMovement) AccountIDs() []uuid.UUID {
	return SortedAccountIDs(m.Effects())
}

// IsPaymentLinked returns true if the movement was posted by a payment
func (m *TreasuryMovement) IsPaymentLinked() bool {
	return m.PaymentID != nil
}

// EnsureManual rejects changes to payment-linked movements through the
// generic movement surface
func (m *TreasuryMovement) EnsureManual() error {
	if m.IsPaymentLinked() {
		return shared.NewInvalidStateError("Movement belongs to a payment; delete the payment instead")
	}
	return nil
}

// SortedAccountIDs returns the distinct account IDs in deltas in ascending order
func SortedAccountIDs(deltas []BalanceDelta) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(deltas))
	ids := make([]uuid.UUID, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := seen[d.AccountID]; ok {
			continue
		}
		seen[d.AccountID] = struct{}{}
		ids = append(ids, d.AccountID)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}
