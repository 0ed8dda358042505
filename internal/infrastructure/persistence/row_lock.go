package persistence

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockRow takes a row-level exclusive lock (SELECT ... FOR UPDATE) on one row.
// The lock is held until the surrounding transaction commits or rolls back,
// so callers must run inside a transaction. Dialects without row locks
// (sqlite) drop the locking clause.
func lockRow(ctx context.Context, db *gorm.DB, table string, id uuid.UUID) error {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).
		Table(table).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return shared.ErrNotFound
	}
	return nil
}
