//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	financeapp "github.com/fieldops/backend/internal/application/finance"
	inventoryapp "github.com/fieldops/backend/internal/application/inventory"
	tradeapp "github.com/fieldops/backend/internal/application/trade"
	treasuryapp "github.com/fieldops/backend/internal/application/treasury"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/cache"
	"github.com/fieldops/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	inventory *inventoryapp.InventoryService
	orders    *tradeapp.PurchaseOrderService
	receiving *tradeapp.ReceivingService
	invoices  *financeapp.InvoiceService
	payments  *financeapp.PaymentService
	treasury  *treasuryapp.TreasuryService
}

func newServices(t *testing.T) *services {
	t.Helper()
	scope := NewTestDB(t).Scope()
	store := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return &services{
		inventory: inventoryapp.NewInventoryService(scope),
		orders:    tradeapp.NewPurchaseOrderService(scope),
		receiving: tradeapp.NewReceivingService(scope),
		invoices:  financeapp.NewInvoiceService(scope),
		payments:  financeapp.NewPaymentService(scope, store, shared.DefaultIdempotencyConfig()),
		treasury:  treasuryapp.NewTreasuryService(scope),
	}
}

func (s *services) orderOf(t *testing.T, code, qty, price string) (*inventoryapp.InventoryItemResponse, *tradeapp.PurchaseOrderResponse) {
	t.Helper()
	ctx := context.Background()
	item, err := s.inventory.CreateItem(ctx, inventoryapp.CreateItemRequest{Code: code, Name: "Item " + code, Unit: "pcs"})
	require.NoError(t, err)
	order, err := s.orders.Create(ctx, tradeapp.CreatePurchaseOrderRequest{
		SupplierID: testutil.TestSupplierID(),
		Lines: []tradeapp.CreatePurchaseOrderLineRequest{
			{InventoryItemID: item.ID, Quantity: testutil.Dec(qty), UnitPrice: testutil.Dec(price)},
		},
	})
	require.NoError(t, err)
	return item, order
}

// runConcurrently starts n workers at once and returns each worker's error
func runConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func countByCode(t *testing.T, errs []error, code string) (ok, matched int) {
	t.Helper()
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case shared.ErrorCode(err) == code:
			matched++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	return ok, matched
}

func TestConcurrentReceiptsNeverOverReceive(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	item, order := s.orderOf(t, "RC-1", "10", "4")
	lineID := order.Lines[0].ID

	errs := runConcurrently(8, func(int) error {
		_, err := s.receiving.Create(ctx, tradeapp.CreateReceiptRequest{
			PurchaseOrderID: order.ID,
			Lines:           []tradeapp.ReceiptLineRequest{{OrderLineID: lineID, Quantity: testutil.Dec("2")}},
		})
		return err
	})

	ok, rejected := countByCode(t, errs, shared.CodeOverReceipt)
	assert.Equal(t, 5, ok)
	assert.Equal(t, 3, rejected)

	got, err := s.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "FULLY_RECEIVED", got.Status)
	assert.True(t, testutil.Dec("10").Equal(got.Lines[0].QuantityReceived))

	stock, err := s.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("10").Equal(stock.QuantityOnHand))
	assert.True(t, testutil.Dec("4").Equal(stock.WeightedAverageCost))

	report, err := s.orders.Reconcile(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent, "drifts: %+v", report.Drifts)
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	item, order := s.orderOf(t, "PY-1", "1", "100")

	invoice, err := s.invoices.Create(ctx, financeapp.CreateInvoiceRequest{
		InvoiceNumber:   "INV-PY-1",
		SupplierID:      testutil.TestSupplierID(),
		PurchaseOrderID: &order.ID,
		Lines: []financeapp.InvoiceLineRequest{
			{InventoryItemID: item.ID, OrderLineID: &order.Lines[0].ID, Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("100")},
		},
	})
	require.NoError(t, err)

	errs := runConcurrently(6, func(int) error {
		_, err := s.payments.Create(ctx, financeapp.CreatePaymentRequest{InvoiceID: invoice.ID, Amount: testutil.Dec("30")})
		return err
	})

	ok, rejected := countByCode(t, errs, shared.CodeOverpayment)
	assert.Equal(t, 3, ok)
	assert.Equal(t, 3, rejected)

	got, err := s.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("90").Equal(got.AmountPaid))
	assert.Equal(t, "PARTIALLY_PAID", got.Status)
}

func TestConcurrentIdempotentPayment(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	item, order := s.orderOf(t, "ID-1", "1", "50")

	invoice, err := s.invoices.Create(ctx, financeapp.CreateInvoiceRequest{
		InvoiceNumber:   "INV-ID-1",
		SupplierID:      testutil.TestSupplierID(),
		PurchaseOrderID: &order.ID,
		Lines: []financeapp.InvoiceLineRequest{
			{InventoryItemID: item.ID, OrderLineID: &order.Lines[0].ID, Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("50")},
		},
	})
	require.NoError(t, err)

	errs := runConcurrently(5, func(int) error {
		_, err := s.payments.Create(ctx, financeapp.CreatePaymentRequest{
			InvoiceID:      invoice.ID,
			Amount:         testutil.Dec("10"),
			IdempotencyKey: "same-key",
		})
		return err
	})

	ok, duplicates := countByCode(t, errs, shared.CodeDuplicateRequest)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 4, duplicates)

	payments, err := s.payments.ListByInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestConcurrentUsageNeverGoesNegative(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	item, order := s.orderOf(t, "US-1", "5", "2")
	_, err := s.receiving.Create(ctx, tradeapp.CreateReceiptRequest{
		PurchaseOrderID: order.ID,
		Lines:           []tradeapp.ReceiptLineRequest{{OrderLineID: order.Lines[0].ID, Quantity: testutil.Dec("5")}},
	})
	require.NoError(t, err)

	errs := runConcurrently(8, func(int) error {
		_, err := s.inventory.RecordUsage(ctx, item.ID, inventoryapp.RecordUsageRequest{Quantity: testutil.Dec("1")})
		return err
	})

	ok, rejected := countByCode(t, errs, shared.CodeNegativeStock)
	assert.Equal(t, 5, ok)
	assert.Equal(t, 3, rejected)

	stock, err := s.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, stock.QuantityOnHand.IsZero())
}

func TestOpposingTransfersConserveBalance(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	a, err := s.treasury.CreateAccount(ctx, treasuryapp.CreateBankAccountRequest{Name: "A", AccountNumber: "A-1", OpeningBalance: testutil.Dec("1000")})
	require.NoError(t, err)
	b, err := s.treasury.CreateAccount(ctx, treasuryapp.CreateBankAccountRequest{Name: "B", AccountNumber: "B-1", OpeningBalance: testutil.Dec("1000")})
	require.NoError(t, err)

	// Alternating directions lock the same two rows in opposite request
	// order; sorted locking must keep this free of deadlocks.
	errs := runConcurrently(10, func(i int) error {
		src, dst := a.ID, b.ID
		if i%2 == 1 {
			src, dst = dst, src
		}
		_, err := s.treasury.CreateMovement(ctx, treasuryapp.MovementRequest{
			Type:                 "TRANSFER",
			Amount:               testutil.Dec("10"),
			SourceAccountID:      ptr(src),
			DestinationAccountID: ptr(dst),
		})
		return err
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	gotA, err := s.treasury.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := s.treasury.GetAccount(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("1000").Equal(gotA.Balance))
	assert.True(t, testutil.Dec("1000").Equal(gotB.Balance))
}

func TestConcurrentMovementEditsKeepBalanceExact(t *testing.T) {
	ctx := context.Background()

	t.Run("updates racing a delete leave the opening balance", func(t *testing.T) {
		s := newServices(t)
		account, err := s.treasury.CreateAccount(ctx, treasuryapp.CreateBankAccountRequest{Name: "Ops", AccountNumber: "OPS-1", OpeningBalance: testutil.Dec("1000")})
		require.NoError(t, err)
		movement, err := s.treasury.CreateMovement(ctx, treasuryapp.MovementRequest{
			Type: "OUTFLOW", Amount: testutil.Dec("100"), SourceAccountID: ptr(account.ID),
		})
		require.NoError(t, err)

		errs := runConcurrently(6, func(i int) error {
			if i == 0 {
				return s.treasury.DeleteMovement(ctx, movement.ID)
			}
			_, err := s.treasury.UpdateMovement(ctx, movement.ID, treasuryapp.MovementRequest{
				Type: "OUTFLOW", Amount: testutil.Dec("150"), SourceAccountID: ptr(account.ID),
			})
			return err
		})
		require.NoError(t, errs[0], "delete")
		_, _ = countByCode(t, errs[1:], shared.CodeNotFound)

		_, err = s.treasury.GetMovement(ctx, movement.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		got, err := s.treasury.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, testutil.Dec("1000").Equal(got.Balance), "balance %s", got.Balance)
	})

	t.Run("concurrent updates apply on top of each other", func(t *testing.T) {
		s := newServices(t)
		account, err := s.treasury.CreateAccount(ctx, treasuryapp.CreateBankAccountRequest{Name: "Ops", AccountNumber: "OPS-2", OpeningBalance: testutil.Dec("1000")})
		require.NoError(t, err)
		movement, err := s.treasury.CreateMovement(ctx, treasuryapp.MovementRequest{
			Type: "OUTFLOW", Amount: testutil.Dec("100"), SourceAccountID: ptr(account.ID),
		})
		require.NoError(t, err)

		amounts := []string{"110", "120", "130", "140", "150", "160"}
		errs := runConcurrently(len(amounts), func(i int) error {
			_, err := s.treasury.UpdateMovement(ctx, movement.ID, treasuryapp.MovementRequest{
				Type: "OUTFLOW", Amount: testutil.Dec(amounts[i]), SourceAccountID: ptr(account.ID),
			})
			return err
		})
		for _, err := range errs {
			require.NoError(t, err)
		}

		stored, err := s.treasury.GetMovement(ctx, movement.ID)
		require.NoError(t, err)
		got, err := s.treasury.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, testutil.Dec("1000").Sub(stored.Amount).Equal(got.Balance),
			"balance %s with stored amount %s", got.Balance, stored.Amount)
	})
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

var errLost = errors.New("claim lost")
