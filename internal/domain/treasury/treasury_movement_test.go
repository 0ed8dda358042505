package treasury

import (
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBankAccount(t *testing.T) {
	t.Run("balance starts at opening balance", func(t *testing.T) {
		acc, err := NewBankAccount("Operating", "001-22", "eur", decimal.NewFromInt(500))
		require.NoError(t, err)
		assert.Equal(t, "EUR", acc.Currency)
		assert.Equal(t, "500", acc.Balance.String())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewBankAccount("", "1", "", decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)
		_, err = NewBankAccount("Ops", "1", "EURO", decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("allows overdraft", func(t *testing.T) {
		acc, _ := NewBankAccount("Ops", "1", "", decimal.NewFromInt(10))
		acc.ApplyDelta(decimal.NewFromInt(-25))
		assert.Equal(t, "-15", acc.Balance.String())
		assert.Equal(t, 2, acc.Version)
	})
}

func TestNewTreasuryMovement(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		typ     MovementType
		src     *uuid.UUID
		dst     *uuid.UUID
		amount  decimal.Decimal
		wantErr bool
	}{
		{"inflow", MovementTypeInflow, nil, &b, amount, false},
		{"inflow without destination", MovementTypeInflow, &a, nil, amount, true},
		{"outflow", MovementTypeOutflow, &a, nil, amount, false},
		{"outflow without source", MovementTypeOutflow, nil, &b, amount, true},
		{"transfer", MovementTypeTransfer, &a, &b, amount, false},
		{"transfer to self", MovementTypeTransfer, &a, &a, amount, true},
		{"zero amount", MovementTypeInflow, nil, &b, decimal.Zero, true},
		{"unknown type", MovementType("SWAP"), &a, &b, amount, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTreasuryMovement(tt.typ, tt.amount, tt.src, tt.dst, "", time.Now())
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTreasuryMovement_Effects(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("transfer debits source and credits destination", func(t *testing.T) {
		m, err := NewTreasuryMovement(MovementTypeTransfer, decimal.NewFromInt(40), &a, &b, "", time.Now())
		require.NoError(t, err)

		effects := m.Effects()
		require.Len(t, effects, 2)
		assert.Equal(t, a, effects[0].AccountID)
		assert.Equal(t, "-40", effects[0].Delta.String())
		assert.Equal(t, b, effects[1].AccountID)
		assert.Equal(t, "40", effects[1].Delta.String())

		inverse := m.InverseEffects()
		assert.Equal(t, "40", inverse[0].Delta.String())
		assert.Equal(t, "-40", inverse[1].Delta.String())
	})

	t.Run("inflow ignores a stray source", func(t *testing.T) {
		m, err := NewTreasuryMovement(MovementTypeInflow, decimal.NewFromInt(5), &a, &b, "", time.Now())
		require.NoError(t, err)
		assert.Nil(t, m.SourceAccountID)
		assert.Len(t, m.Effects(), 1)
	})

	t.Run("account ids are sorted", func(t *testing.T) {
		m, _ := NewTreasuryMovement(MovementTypeTransfer, decimal.NewFromInt(1), &a, &b, "", time.Now())
		ids := m.AccountIDs()
		require.Len(t, ids, 2)
		assert.True(t, ids[0].String() < ids[1].String())
	})
}

func TestTreasuryMovement_PaymentLinked(t *testing.T) {
	account := uuid.New()
	m, err := NewPaymentOutflow(uuid.New(), account, decimal.NewFromInt(230), "INV-1", time.Now())
	require.NoError(t, err)

	assert.True(t, m.IsPaymentLinked())
	assert.Equal(t, MovementTypeOutflow, m.Type)
	assert.ErrorIs(t, m.EnsureManual(), shared.ErrInvalidState)

	err = m.Update(MovementTypeOutflow, decimal.NewFromInt(1), &account, nil, "", time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTreasuryMovement_Update(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	m, _ := NewTreasuryMovement(MovementTypeInflow, decimal.NewFromInt(10), nil, &a, "", time.Now())

	require.NoError(t, m.Update(MovementTypeTransfer, decimal.NewFromInt(7), &a, &b, "moved", time.Now()))

	assert.Equal(t, MovementTypeTransfer, m.Type)
	assert.Equal(t, "7", m.Amount.String())
	assert.Equal(t, "moved", m.Reference)
}
