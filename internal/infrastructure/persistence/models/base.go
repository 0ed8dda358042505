package models

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Row holds the identity and timestamp columns shared by every table
type Row struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (r *Row) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (r *Row) setEntity(e shared.BaseEntity) {
	*r = Row{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// VersionedRow is a Row with the optimistic version counter of an
// aggregate root
type VersionedRow struct {
	Row
	Version int `gorm:"not null;default:1"`
}

func (r *VersionedRow) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: r.entity(), Version: r.Version}
}

func (r *VersionedRow) setRoot(a shared.BaseAggregateRoot) {
	r.setEntity(a.BaseEntity)
	r.Version = a.Version
}

// All lists the models parents first, the order AutoMigrate needs
func All() []any {
	return []any{
		&InventoryItemModel{}, &InventoryEntryModel{},
		&PurchaseOrderModel{}, &PurchaseOrderLineModel{},
		&ReceiptModel{}, &ReceiptLineModel{},
		&SupplierInvoiceModel{}, &SupplierInvoiceLineModel{},
		&PaymentModel{},
		&BankAccountModel{}, &TreasuryMovementModel{},
	}
}
