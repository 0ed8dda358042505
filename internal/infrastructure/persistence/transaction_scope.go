package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.Scope using GORM transactions.
// Every repository handed to the callback shares the transaction.
type GormTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// ScopeOption configures a GormTransactionScope
type ScopeOption func(*GormTransactionScope)

// WithLockTimeout bounds how long a statement waits for a row lock.
// Only applied on postgres; zero leaves the server default.
func WithLockTimeout(d time.Duration) ScopeOption {
	return func(s *GormTransactionScope) {
		s.lockTimeout = d
	}
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, opts ...ScopeOption) *GormTransactionScope {
	s := &GormTransactionScope{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&gormRepositories{tx: tx})
	})
	return translateError(err)
}

// gormRepositories provides access to all repositories within a transaction.
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormRepositories) Receipts() trade.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

func (r *gormRepositories) InventoryItems() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

func (r *gormRepositories) InventoryEntries() inventory.InventoryEntryRepository {
	return NewGormInventoryEntryRepository(r.tx)
}

func (r *gormRepositories) SupplierInvoices() finance.SupplierInvoiceRepository {
	return NewGormSupplierInvoiceRepository(r.tx)
}

func (r *gormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) BankAccounts() treasury.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

func (r *gormRepositories) TreasuryMovements() treasury.TreasuryMovementRepository {
	return NewGormTreasuryMovementRepository(r.tx)
}

// Ensure GormTransactionScope implements uow.Scope
var _ uow.Scope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements uow.Repositories
var _ uow.Repositories = (*gormRepositories)(nil)
