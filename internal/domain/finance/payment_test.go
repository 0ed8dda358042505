package finance

import (
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	t.Run("defaults method and date", func(t *testing.T) {
		p, err := NewPayment(uuid.New(), dec("10"), "", time.Time{}, nil, "")
		require.NoError(t, err)
		assert.Equal(t, PaymentMethodBankTransfer, p.Method)
		assert.False(t, p.PaidAt.IsZero())
		assert.Nil(t, p.TreasuryMovementID)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), decimal.Zero, PaymentMethodCash, time.Now(), nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects amount finer than stored scale", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), dec("3.08625"), PaymentMethodCash, time.Now(), nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), dec("1"), PaymentMethod("BARTER"), time.Now(), nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("links movement", func(t *testing.T) {
		account := uuid.New()
		p, err := NewPayment(uuid.New(), dec("1"), PaymentMethodCheck, time.Now(), &account, "chk-9")
		require.NoError(t, err)
		movement := uuid.New()
		p.LinkMovement(movement)
		assert.Equal(t, movement, *p.TreasuryMovementID)
	})
}
