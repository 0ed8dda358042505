package trade

import (
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceipt(t *testing.T) {
	t.Run("defaults received at", func(t *testing.T) {
		r, err := NewReceipt("GR-2026-00001", uuid.New(), time.Time{}, nil, "")
		require.NoError(t, err)
		assert.False(t, r.ReceivedAt.IsZero())
		assert.Equal(t, ReceiptStatusPartial, r.Status)
	})

	t.Run("requires order", func(t *testing.T) {
		_, err := NewReceipt("GR-2026-00001", uuid.Nil, time.Now(), nil, "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestReceipt_AddLine(t *testing.T) {
	order := sentOrderWithLines(t, 10, 4)
	r, err := NewReceipt("GR-2026-00001", order.ID, time.Now(), nil, "")
	require.NoError(t, err)

	line, err := r.AddLine(&order.Lines[0], decimal.NewFromInt(3), decimal.RequireFromString("2.5"), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, order.Lines[0].InventoryItemID, line.InventoryItemID)
	assert.Equal(t, r.ID, line.ReceiptID)

	_, err = r.AddLine(&order.Lines[1], decimal.NewFromInt(2), decimal.NewFromInt(1), uuid.New())
	require.NoError(t, err)

	_, err = r.AddLine(&order.Lines[0], decimal.NewFromInt(1), decimal.NewFromInt(1), uuid.New())
	assert.ErrorIs(t, err, shared.ErrValidation)

	assert.Equal(t, "9.5", r.TotalAmount().String())
	assert.Len(t, r.LineIDs(), 2)
}

func TestReceipt_MarkCompleteIf(t *testing.T) {
	order := sentOrderWithLines(t, 2)
	r, _ := NewReceipt("GR-1", order.ID, time.Now(), nil, "")

	r.MarkCompleteIf(order)
	assert.Equal(t, ReceiptStatusPartial, r.Status)

	_, _ = order.ReceiveLine(order.Lines[0].ID, decimal.NewFromInt(2), decimal.NewFromInt(1))
	require.NoError(t, order.RefreshReceivingStatus())
	r.MarkCompleteIf(order)
	assert.Equal(t, ReceiptStatusComplete, r.Status)
}
