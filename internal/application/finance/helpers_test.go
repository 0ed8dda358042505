package finance

import (
	"context"
	"testing"

	"github.com/fieldops/backend/internal/application/trade"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/fieldops/backend/internal/infrastructure/cache"
	"github.com/fieldops/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	scope     uow.Scope
	db        *gorm.DB
	orders    *trade.PurchaseOrderService
	receiving *trade.ReceivingService
	invoices  *InvoiceService
	payments  *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scope, db := testutil.NewScope(t)
	store := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return &fixture{
		scope:     scope,
		db:        db,
		orders:    trade.NewPurchaseOrderService(scope),
		receiving: trade.NewReceivingService(scope),
		invoices:  NewInvoiceService(scope),
		payments:  NewPaymentService(scope, store, shared.DefaultIdempotencyConfig()),
	}
}

func (f *fixture) createItem(t *testing.T, code string) uuid.UUID {
	t.Helper()
	item, err := inventory.NewInventoryItem(code, "Item "+code, "pcs")
	require.NoError(t, err)
	require.NoError(t, f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		return repos.InventoryItems().Save(context.Background(), item)
	}))
	return item.ID
}

// createOrder creates an order with one line per item, each for qty at price
func (f *fixture) createOrder(t *testing.T, qty, price string, itemIDs ...uuid.UUID) *trade.PurchaseOrderResponse {
	t.Helper()
	req := trade.CreatePurchaseOrderRequest{SupplierID: testutil.TestSupplierID()}
	for _, id := range itemIDs {
		req.Lines = append(req.Lines, trade.CreatePurchaseOrderLineRequest{
			InventoryItemID: id,
			Quantity:        testutil.Dec(qty),
			UnitPrice:       testutil.Dec(price),
		})
	}
	order, err := f.orders.Create(context.Background(), req)
	require.NoError(t, err)
	return order
}

func (f *fixture) order(t *testing.T, id uuid.UUID) *trade.PurchaseOrderResponse {
	t.Helper()
	order, err := f.orders.GetByID(context.Background(), id)
	require.NoError(t, err)
	return order
}

func (f *fixture) createAccount(t *testing.T, number, opening string) uuid.UUID {
	t.Helper()
	acc, err := treasury.NewBankAccount("Operating "+number, number, "USD", testutil.Dec(opening))
	require.NoError(t, err)
	require.NoError(t, f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		return repos.BankAccounts().Save(context.Background(), acc)
	}))
	return acc.ID
}

func (f *fixture) account(t *testing.T, id uuid.UUID) *treasury.BankAccount {
	t.Helper()
	var acc *treasury.BankAccount
	require.NoError(t, f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		var err error
		acc, err = repos.BankAccounts().FindByID(context.Background(), id)
		return err
	}))
	return acc
}

func line(itemID uuid.UUID, orderLineID *uuid.UUID, qty, price, taxes string) InvoiceLineRequest {
	return InvoiceLineRequest{
		InventoryItemID: itemID,
		OrderLineID:     orderLineID,
		Quantity:        testutil.Dec(qty),
		UnitPrice:       testutil.Dec(price),
		Taxes:           testutil.Dec(taxes),
	}
}

// invoiceOrder registers an invoice for the given order
func (f *fixture) invoiceOrder(t *testing.T, number string, orderID uuid.UUID, lines ...InvoiceLineRequest) *InvoiceResponse {
	t.Helper()
	inv, err := f.invoices.Create(context.Background(), CreateInvoiceRequest{
		InvoiceNumber:   number,
		SupplierID:      testutil.TestSupplierID(),
		PurchaseOrderID: &orderID,
		Lines:           lines,
	})
	require.NoError(t, err)
	return inv
}

func (f *fixture) pay(t *testing.T, invoiceID uuid.UUID, amount string, accountID *uuid.UUID) (*PaymentResponse, error) {
	t.Helper()
	return f.payments.Create(context.Background(), CreatePaymentRequest{
		InvoiceID:     invoiceID,
		Amount:        testutil.Dec(amount),
		BankAccountID: accountID,
	})
}

func receiptFor(orderID, orderLineID uuid.UUID, qty string) trade.CreateReceiptRequest {
	return trade.CreateReceiptRequest{
		PurchaseOrderID: orderID,
		Lines:           []trade.ReceiptLineRequest{{OrderLineID: orderLineID, Quantity: testutil.Dec(qty)}},
	}
}
