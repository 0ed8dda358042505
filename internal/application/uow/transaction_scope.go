// Package uow defines the unit of work every mutating use case runs in.
//
// A use case opens one Scope.Execute call per request. All repositories handed
// to the callback share the same database transaction; returning an error rolls
// every write back. Row locks taken through FindByIDForUpdate are held until
// the callback returns.
//
// Locks are acquired in a fixed order to avoid deadlocks between use cases:
// purchase order, supplier invoice, inventory items (ascending ID), bank
// accounts (ascending ID).
package uow

import (
	"context"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/domain/treasury"
)

// Scope runs a function inside one atomic transaction
type Scope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository bound to the current transaction
type Repositories interface {
	PurchaseOrders() trade.PurchaseOrderRepository
	Receipts() trade.ReceiptRepository
	InventoryItems() inventory.InventoryItemRepository
	InventoryEntries() inventory.InventoryEntryRepository
	SupplierInvoices() finance.SupplierInvoiceRepository
	Payments() finance.PaymentRepository
	BankAccounts() treasury.BankAccountRepository
	TreasuryMovements() treasury.TreasuryMovementRepository
}

// NoOpScope runs the function against fixed repositories without a
// transaction. Used with mocked repositories in tests.
type NoOpScope struct {
	Repos Repositories
}

// NewNoOpScope creates a NoOpScope
func NewNoOpScope(repos Repositories) *NoOpScope {
	return &NoOpScope{Repos: repos}
}

// Execute runs fn directly
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.Repos)
}

var _ Scope = (*NoOpScope)(nil)
