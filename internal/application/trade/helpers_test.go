package trade

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	scope     uow.Scope
	db        *gorm.DB
	orders    *PurchaseOrderService
	receiving *ReceivingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scope, db := testutil.NewScope(t)
	return &fixture{
		scope:     scope,
		db:        db,
		orders:    NewPurchaseOrderService(scope),
		receiving: NewReceivingService(scope),
	}
}

func (f *fixture) createItem(t *testing.T, code string) uuid.UUID {
	t.Helper()
	item, err := inventory.NewInventoryItem(code, "Item "+code, "pcs")
	require.NoError(t, err)
	err = f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		return repos.InventoryItems().Save(context.Background(), item)
	})
	require.NoError(t, err)
	return item.ID
}

func (f *fixture) item(t *testing.T, id uuid.UUID) *inventory.InventoryItem {
	t.Helper()
	var item *inventory.InventoryItem
	err := f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		var err error
		item, err = repos.InventoryItems().FindByID(context.Background(), id)
		return err
	})
	require.NoError(t, err)
	return item
}

// createOrder creates an order with one line per item, each for qty at price
func (f *fixture) createOrder(t *testing.T, qty, price string, itemIDs ...uuid.UUID) *PurchaseOrderResponse {
	t.Helper()
	req := CreatePurchaseOrderRequest{SupplierID: testutil.TestSupplierID()}
	for _, id := range itemIDs {
		req.Lines = append(req.Lines, CreatePurchaseOrderLineRequest{
			InventoryItemID: id,
			Quantity:        testutil.Dec(qty),
			UnitPrice:       testutil.Dec(price),
		})
	}
	order, err := f.orders.Create(context.Background(), req)
	require.NoError(t, err)
	return order
}

func (f *fixture) receive(t *testing.T, orderID, lineID uuid.UUID, qty, price string) (*ReceiptResponse, error) {
	t.Helper()
	p := testutil.Dec(price)
	return f.receiving.Create(context.Background(), CreateReceiptRequest{
		PurchaseOrderID: orderID,
		Lines:           []ReceiptLineRequest{{OrderLineID: lineID, Quantity: testutil.Dec(qty), UnitPrice: &p}},
	})
}
