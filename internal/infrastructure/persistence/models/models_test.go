package models

import (
	"testing"
	"time"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModels_TableNames(t *testing.T) {
	assert.Equal(t, "inventory_items", InventoryItemModel{}.TableName())
	assert.Equal(t, "inventory_entries", InventoryEntryModel{}.TableName())
	assert.Equal(t, "purchase_orders", PurchaseOrderModel{}.TableName())
	assert.Equal(t, "purchase_order_lines", PurchaseOrderLineModel{}.TableName())
	assert.Equal(t, "receipts", ReceiptModel{}.TableName())
	assert.Equal(t, "receipt_lines", ReceiptLineModel{}.TableName())
	assert.Equal(t, "supplier_invoices", SupplierInvoiceModel{}.TableName())
	assert.Equal(t, "supplier_invoice_lines", SupplierInvoiceLineModel{}.TableName())
	assert.Equal(t, "payments", PaymentModel{}.TableName())
	assert.Equal(t, "bank_accounts", BankAccountModel{}.TableName())
	assert.Equal(t, "treasury_movements", TreasuryMovementModel{}.TableName())
	assert.Len(t, All(), 11)
}

func TestPurchaseOrderModel_RoundTrip(t *testing.T) {
	order, err := trade.NewPurchaseOrder("PO-2026-00001", uuid.New())
	require.NoError(t, err)
	_, err = order.AddLine(uuid.New(), "Copper pipe", decimal.NewFromInt(10), decimal.NewFromFloat(2.5))
	require.NoError(t, err)
	require.NoError(t, order.Send())

	model := PurchaseOrderModelFromDomain(order)
	require.Len(t, model.Lines, 1)
	assert.Equal(t, order.ID, model.ID)
	assert.Equal(t, order.Version, model.Version)
	assert.Equal(t, order.Lines[0].ID, model.Lines[0].ID)

	back := model.ToDomain()
	assert.Equal(t, order.OrderNumber, back.OrderNumber)
	assert.Equal(t, trade.PurchaseOrderStatusSent, back.Status)
	assert.Equal(t, "25", back.AmountOrdered.String())
	require.Len(t, back.Lines, 1)
	assert.Equal(t, "10", back.Lines[0].QuantityOrdered.String())
	assert.NotNil(t, back.SentAt)
}

func TestSupplierInvoiceModel_RoundTrip(t *testing.T) {
	orderID := uuid.New()
	orderLineID := uuid.New()
	due := time.Now().Add(30 * 24 * time.Hour)
	inv, err := finance.NewSupplierInvoice("INV-1", uuid.New(), &orderID, time.Now(), &due)
	require.NoError(t, err)
	_, err = inv.AddLine(finance.LineInput{
		InventoryItemID: uuid.New(),
		OrderLineID:     &orderLineID,
		Quantity:        decimal.NewFromInt(4),
		UnitPrice:       decimal.NewFromInt(5),
		Taxes:           decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	require.NoError(t, inv.RecalculateTotals())

	back := SupplierInvoiceModelFromDomain(inv).ToDomain()
	assert.Equal(t, inv.ID, back.ID)
	assert.Equal(t, &orderID, back.PurchaseOrderID)
	assert.Equal(t, "20", back.Subtotal.String())
	assert.Equal(t, "22", back.TotalPayable.String())
	require.Len(t, back.Lines, 1)
	assert.Equal(t, &orderLineID, back.Lines[0].OrderLineID)
	assert.Nil(t, back.Lines[0].ReceiptLineID)
}

func TestTreasuryMovementModel_RoundTrip(t *testing.T) {
	src := uuid.New()
	mv, err := treasury.NewTreasuryMovement(treasury.MovementTypeOutflow, decimal.NewFromInt(40), &src, nil, "REF", time.Now())
	require.NoError(t, err)

	back := TreasuryMovementModelFromDomain(mv).ToDomain()
	assert.Equal(t, mv.ID, back.ID)
	assert.Equal(t, treasury.MovementTypeOutflow, back.Type)
	assert.Equal(t, &src, back.SourceAccountID)
	assert.Nil(t, back.DestinationAccountID)
	assert.False(t, back.IsPaymentLinked())
}
