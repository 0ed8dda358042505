package trade

import (
	"context"
	"testing"
	"time"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivingService_WeightedAverageScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.createItem(t, "FLT-001")
	order := f.createOrder(t, "100", "2", itemID)
	lineID := order.Lines[0].ID

	first, err := f.receive(t, order.ID, lineID, "40", "2.50")
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", first.Status)
	assert.True(t, f.item(t, itemID).WeightedAverageCost.Equal(testutil.Dec("2.50")))

	mid, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_RECEIVED", mid.Status)

	second, err := f.receive(t, order.ID, lineID, "60", "2.00")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", second.Status)

	item := f.item(t, itemID)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.WeightedAverageCost.Equal(testutil.Dec("2.20")), item.WeightedAverageCost.String())

	done, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "FULLY_RECEIVED", done.Status)
	assert.True(t, done.Lines[0].ReceivedComplete)
	assert.True(t, done.AmountReceived.Equal(decimal.NewFromInt(220)))
	assert.True(t, done.TotalReceivedQty.Equal(decimal.NewFromInt(100)))

	t.Run("fully received order rejects new receipts", func(t *testing.T) {
		_, err := f.receive(t, order.ID, lineID, "1", "2")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestReceivingService_CreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.createItem(t, "FLT-001")
	order := f.createOrder(t, "100", "2", itemID)
	lineID := order.Lines[0].ID

	tests := []struct {
		name    string
		req     CreateReceiptRequest
		wantErr error
	}{
		{
			name: "over receipt",
			req: CreateReceiptRequest{PurchaseOrderID: order.ID, Lines: []ReceiptLineRequest{
				{OrderLineID: lineID, Quantity: decimal.NewFromInt(101)},
			}},
			wantErr: shared.ErrOverReceipt,
		},
		{
			name: "zero quantity",
			req: CreateReceiptRequest{PurchaseOrderID: order.ID, Lines: []ReceiptLineRequest{
				{OrderLineID: lineID, Quantity: decimal.Zero},
			}},
			wantErr: shared.ErrValidation,
		},
		{
			name: "duplicate order line",
			req: CreateReceiptRequest{PurchaseOrderID: order.ID, Lines: []ReceiptLineRequest{
				{OrderLineID: lineID, Quantity: decimal.NewFromInt(1)},
				{OrderLineID: lineID, Quantity: decimal.NewFromInt(1)},
			}},
			wantErr: shared.ErrValidation,
		},
		{
			name: "unknown order line",
			req: CreateReceiptRequest{PurchaseOrderID: order.ID, Lines: []ReceiptLineRequest{
				{OrderLineID: uuid.New(), Quantity: decimal.NewFromInt(1)},
			}},
			wantErr: shared.ErrNotFound,
		},
		{
			name:    "no lines",
			req:     CreateReceiptRequest{PurchaseOrderID: order.ID},
			wantErr: shared.ErrValidation,
		},
		{
			name: "unknown order",
			req: CreateReceiptRequest{PurchaseOrderID: uuid.New(), Lines: []ReceiptLineRequest{
				{OrderLineID: lineID, Quantity: decimal.NewFromInt(1)},
			}},
			wantErr: shared.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.receiving.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	item := f.item(t, itemID)
	assert.True(t, item.QuantityOnHand.IsZero(), "failed receipts must not move stock")
	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", stored.Status)
	assert.True(t, stored.Lines[0].QuantityReceived.IsZero())
}

func TestReceivingService_MultiLineRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	filter := f.createItem(t, "FLT-001")
	belt := f.createItem(t, "BLT-002")
	order := f.createOrder(t, "10", "1", filter, belt)

	_, err := f.receiving.Create(ctx, CreateReceiptRequest{
		PurchaseOrderID: order.ID,
		Lines: []ReceiptLineRequest{
			{OrderLineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(5)},
			{OrderLineID: order.Lines[1].ID, Quantity: decimal.NewFromInt(11)},
		},
	})
	require.ErrorIs(t, err, shared.ErrOverReceipt)

	assert.True(t, f.item(t, filter).QuantityOnHand.IsZero())
	var entries int64
	require.NoError(t, f.db.Table("inventory_entries").Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestReceivingService_DefaultsAndAttribution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.createItem(t, "FLT-001")
	order := f.createOrder(t, "10", "3", itemID)
	clerk := uuid.New()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	receipt, err := f.receiving.Create(ctx, CreateReceiptRequest{
		PurchaseOrderID: order.ID,
		ReceivedAt:      &at,
		RecordedBy:      &clerk,
		Notes:           "dock 2",
		Lines:           []ReceiptLineRequest{{OrderLineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(4)}},
	})
	require.NoError(t, err)
	assert.True(t, receipt.Lines[0].UnitPriceAtReceipt.Equal(decimal.NewFromInt(3)))
	assert.True(t, receipt.TotalAmount.Equal(decimal.NewFromInt(12)))
	require.NotNil(t, receipt.RecordedBy)
	assert.Equal(t, clerk, *receipt.RecordedBy)

	stored, err := f.receiving.GetByID(ctx, receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedAt.Equal(at))
	assert.Equal(t, "dock 2", stored.Notes)

	list, err := f.receiving.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReceivingService_DeleteRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	itemID := f.createItem(t, "FLT-001")
	order := f.createOrder(t, "100", "2", itemID)
	lineID := order.Lines[0].ID

	_, err := f.receive(t, order.ID, lineID, "40", "2.50")
	require.NoError(t, err)
	before, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	itemBefore := f.item(t, itemID)

	receipt, err := f.receive(t, order.ID, lineID, "60", "2.00")
	require.NoError(t, err)
	require.NoError(t, f.receiving.Delete(ctx, receipt.ID))

	after, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.True(t, before.Lines[0].QuantityReceived.Equal(after.Lines[0].QuantityReceived))
	assert.Equal(t, before.Lines[0].ReceivedComplete, after.Lines[0].ReceivedComplete)
	assert.True(t, before.AmountReceived.Equal(after.AmountReceived))
	assert.True(t, before.TotalReceivedQty.Equal(after.TotalReceivedQty))

	itemAfter := f.item(t, itemID)
	assert.True(t, itemBefore.QuantityOnHand.Equal(itemAfter.QuantityOnHand))
	// average cost is not unwound by a reversal
	assert.True(t, itemAfter.WeightedAverageCost.Equal(testutil.Dec("2.20")))

	_, err = f.receiving.GetByID(ctx, receipt.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("removing the last receipt returns the order to SENT", func(t *testing.T) {
		receipts, err := f.receiving.ListByOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, receipts, 1)
		require.NoError(t, f.receiving.Delete(ctx, receipts[0].ID))

		o, err := f.orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "SENT", o.Status)
		assert.True(t, o.Lines[0].QuantityReceived.IsZero())
		assert.True(t, f.item(t, itemID).QuantityOnHand.IsZero())
	})
}

func TestReceivingService_DeleteRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("negative stock", func(t *testing.T) {
		f := newFixture(t)
		itemID := f.createItem(t, "FLT-001")
		order := f.createOrder(t, "100", "2", itemID)
		receipt, err := f.receive(t, order.ID, order.Lines[0].ID, "40", "2")
		require.NoError(t, err)

		err = f.scope.Execute(ctx, func(repos uow.Repositories) error {
			item, err := repos.InventoryItems().FindByIDForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			entry, err := item.Consume(decimal.NewFromInt(30), inventory.SourceTypeUsage, "JOB-1")
			if err != nil {
				return err
			}
			if err := repos.InventoryEntries().Create(ctx, entry); err != nil {
				return err
			}
			return repos.InventoryItems().Save(ctx, item)
		})
		require.NoError(t, err)

		err = f.receiving.Delete(ctx, receipt.ID)
		assert.ErrorIs(t, err, shared.ErrNegativeStock)

		_, err = f.receiving.GetByID(ctx, receipt.ID)
		assert.NoError(t, err, "failed reversal must keep the receipt")
		assert.True(t, f.item(t, itemID).QuantityOnHand.Equal(decimal.NewFromInt(10)))
	})

	t.Run("matched by an active invoice", func(t *testing.T) {
		f := newFixture(t)
		itemID := f.createItem(t, "FLT-001")
		order := f.createOrder(t, "100", "2", itemID)
		receipt, err := f.receive(t, order.ID, order.Lines[0].ID, "40", "2")
		require.NoError(t, err)

		inv, err := finance.NewSupplierInvoice("INV-1", order.SupplierID, &order.ID, time.Now(), nil)
		require.NoError(t, err)
		orderLineID, receiptLineID := order.Lines[0].ID, receipt.Lines[0].ID
		_, err = inv.AddLine(finance.LineInput{
			InventoryItemID: itemID,
			OrderLineID:     &orderLineID,
			ReceiptLineID:   &receiptLineID,
			Quantity:        decimal.NewFromInt(40),
			UnitPrice:       decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		require.NoError(t, inv.RecalculateTotals())
		require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
			return repos.SupplierInvoices().Save(ctx, inv)
		}))

		err = f.receiving.Delete(ctx, receipt.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		require.NoError(t, inv.Void("wrong supplier"))
		require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
			return repos.SupplierInvoices().Save(ctx, inv)
		}))
		assert.NoError(t, f.receiving.Delete(ctx, receipt.ID))
	})

	t.Run("cancelled order keeps its status", func(t *testing.T) {
		f := newFixture(t)
		itemID := f.createItem(t, "FLT-001")
		order := f.createOrder(t, "100", "2", itemID)
		receipt, err := f.receive(t, order.ID, order.Lines[0].ID, "40", "2")
		require.NoError(t, err)
		_, err = f.orders.Cancel(ctx, order.ID, ClosePurchaseOrderRequest{Reason: "late"})
		require.NoError(t, err)

		_, err = f.receive(t, order.ID, order.Lines[0].ID, "1", "2")
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		require.NoError(t, f.receiving.Delete(ctx, receipt.ID))
		o, err := f.orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", o.Status)
		assert.True(t, o.Lines[0].QuantityReceived.IsZero())
	})

	t.Run("unknown receipt", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.receiving.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}
