package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_LockTimeout(t *testing.T) {
	t.Run("sets lock timeout and rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '5000ms'")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		scope := NewGormTransactionScope(db, WithLockTimeout(5*time.Second))
		err := scope.Execute(context.Background(), func(repos uow.Repositories) error {
			return shared.ErrOverReceipt
		})

		assert.ErrorIs(t, err, shared.ErrOverReceipt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero timeout issues no statement", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		scope := NewGormTransactionScope(db)
		err := scope.Execute(context.Background(), func(repos uow.Repositories) error {
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionScope_TranslatesLockTimeout(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "inventory_items" WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	scope := NewGormTransactionScope(db)
	err := scope.Execute(context.Background(), func(repos uow.Repositories) error {
		_, err := repos.InventoryItems().FindByIDForUpdate(context.Background(), id)
		return err
	})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	t.Run("selects for update then loads the item", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		id := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`SELECT "id" FROM "inventory_items" WHERE id = \$1 FOR UPDATE`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
		mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "code", "name", "unit", "quantity_on_hand", "weighted_average_cost", "version", "created_at", "updated_at",
			}).AddRow(id.String(), "FLT-001", "Oil filter", "pcs", "40", "2.5", 3, now, now))

		item, err := NewGormInventoryItemRepository(db).FindByIDForUpdate(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "FLT-001", item.Code)
		assert.Equal(t, "2.5", item.WeightedAverageCost.String())
		assert.Equal(t, 3, item.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("treasury movement is locked before it is read", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		id := uuid.New()
		accountID := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`SELECT "id" FROM "treasury_movements" WHERE id = \$1 FOR UPDATE`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
		mock.ExpectQuery(`SELECT \* FROM "treasury_movements" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "type", "amount", "source_account_id", "destination_account_id", "payment_id",
				"reference", "description", "occurred_at", "created_at", "updated_at",
			}).AddRow(id.String(), "OUTFLOW", "150.0000", accountID.String(), nil, nil, "FEE-9", "", now, now, now))

		movement, err := NewGormTreasuryMovementRepository(db).FindByIDForUpdate(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "150", movement.Amount.String())
		require.NotNil(t, movement.SourceAccountID)
		assert.Equal(t, accountID, *movement.SourceAccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT "id" FROM "purchase_orders" WHERE id = \$1 FOR UPDATE`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormPurchaseOrderRepository(db).FindByIDForUpdate(context.Background(), id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSumSubtotalByOrder_ExcludesVoided(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	orderID := uuid.New()
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(subtotal\), 0\) as total FROM "supplier_invoices" WHERE purchase_order_id = \$1 AND status <> \$2`).
		WithArgs(orderID, "VOIDED").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("220.0000"))

	total, err := NewGormSupplierInvoiceRepository(db).SumSubtotalByOrder(context.Background(), orderID)

	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(220)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *shared.DomainError
	}{
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, shared.ErrConcurrencyConflict},
		{"deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), shared.ErrConcurrencyConflict},
		{"serialization", &pgconn.PgError{Code: "40001"}, shared.ErrConcurrencyConflict},
		{"unique", &pgconn.PgError{Code: "23505"}, shared.ErrValidation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, shared.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			var pgErr *pgconn.PgError
			assert.True(t, errors.As(got, &pgErr), "cause is kept")
		})
	}

	t.Run("passes through other errors", func(t *testing.T) {
		assert.Nil(t, translateError(nil))
		assert.Same(t, assert.AnError, translateError(assert.AnError))
		other := &pgconn.PgError{Code: "22001"}
		assert.Same(t, other, translateError(other))
		negative := shared.NewDomainError(shared.CodeNegativeStock, "x")
		assert.Same(t, negative, translateError(negative))
	})
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
