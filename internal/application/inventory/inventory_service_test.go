package inventory

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*InventoryService, uow.Scope) {
	t.Helper()
	scope, _ := testutil.NewScope(t)
	return NewInventoryService(scope), scope
}

// stockItem creates an item and receives qty at price directly through the repositories
func stockItem(t *testing.T, svc *InventoryService, scope uow.Scope, code string, qty, price string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, CreateItemRequest{Code: code, Name: "Item " + code, Unit: "pcs"})
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos uow.Repositories) error {
		item, err := repos.InventoryItems().FindByIDForUpdate(ctx, created.ID)
		if err != nil {
			return err
		}
		entry, err := item.ReceiveStock(testutil.Dec(qty), testutil.Dec(price), inventory.SourceTypeReceipt, "seed")
		if err != nil {
			return err
		}
		if err := repos.InventoryEntries().Create(ctx, entry); err != nil {
			return err
		}
		return repos.InventoryItems().Save(ctx, item)
	})
	require.NoError(t, err)
	return created.ID
}

func TestInventoryService_CreateItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateItem(ctx, CreateItemRequest{Code: "FLT-001", Name: "Oil filter"})
	require.NoError(t, err)
	assert.Equal(t, "unit", resp.Unit)
	assert.True(t, resp.QuantityOnHand.IsZero())
	assert.True(t, resp.WeightedAverageCost.IsZero())

	tests := []struct {
		name string
		req  CreateItemRequest
	}{
		{"duplicate code", CreateItemRequest{Code: "FLT-001", Name: "Other"}},
		{"empty code", CreateItemRequest{Code: " ", Name: "Other"}},
		{"empty name", CreateItemRequest{Code: "X-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tt.req)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestInventoryService_RecordUsage(t *testing.T) {
	svc, scope := newTestService(t)
	ctx := context.Background()
	itemID := stockItem(t, svc, scope, "FLT-001", "40", "2.5")

	t.Run("consumes at average cost", func(t *testing.T) {
		entry, err := svc.RecordUsage(ctx, itemID, RecordUsageRequest{Quantity: decimal.NewFromInt(15), Reference: "JOB-7"})
		require.NoError(t, err)
		assert.Equal(t, "USAGE", entry.EntryType)
		assert.True(t, entry.UnitCost.Equal(testutil.Dec("2.5")))
		assert.True(t, entry.BalanceBefore.Equal(decimal.NewFromInt(40)))
		assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, "JOB-7", entry.Reference)

		item, err := svc.GetItem(ctx, itemID)
		require.NoError(t, err)
		assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(25)))
		assert.True(t, item.WeightedAverageCost.Equal(testutil.Dec("2.5")))
	})

	t.Run("rejects more than on hand", func(t *testing.T) {
		_, err := svc.RecordUsage(ctx, itemID, RecordUsageRequest{Quantity: decimal.NewFromInt(26)})
		assert.ErrorIs(t, err, shared.ErrNegativeStock)

		item, err := svc.GetItem(ctx, itemID)
		require.NoError(t, err)
		assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(25)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := svc.RecordUsage(ctx, itemID, RecordUsageRequest{Quantity: decimal.Zero})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.RecordUsage(ctx, uuid.New(), RecordUsageRequest{Quantity: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInventoryService_ReverseUsage(t *testing.T) {
	svc, scope := newTestService(t)
	ctx := context.Background()
	itemID := stockItem(t, svc, scope, "FLT-001", "10", "3")

	usage, err := svc.RecordUsage(ctx, itemID, RecordUsageRequest{Quantity: decimal.NewFromInt(4)})
	require.NoError(t, err)

	item, err := svc.ReverseUsage(ctx, usage.ID)
	require.NoError(t, err)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	assert.True(t, item.WeightedAverageCost.Equal(decimal.NewFromInt(3)))

	entries, total, err := svc.ListEntries(ctx, itemID, EntryListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "RECEIPT", entries[0].EntryType)

	t.Run("receipt entries are not reversible here", func(t *testing.T) {
		_, err := svc.ReverseUsage(ctx, entries[0].ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("already reversed", func(t *testing.T) {
		_, err := svc.ReverseUsage(ctx, usage.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInventoryService_ListItems(t *testing.T) {
	svc, scope := newTestService(t)
	ctx := context.Background()
	stockItem(t, svc, scope, "FLT-001", "5", "1")
	_, err := svc.CreateItem(ctx, CreateItemRequest{Code: "BLT-002", Name: "Belt"})
	require.NoError(t, err)

	items, total, err := svc.ListItems(ctx, ItemListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "BLT-002", items[0].Code)

	hasStock := true
	items, total, err = svc.ListItems(ctx, ItemListFilter{HasStock: &hasStock})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "FLT-001", items[0].Code)
	assert.True(t, items[0].StockValue.Equal(decimal.NewFromInt(5)))
}
