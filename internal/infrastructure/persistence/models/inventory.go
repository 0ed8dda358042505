package models

import (
	"time"

	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate root.
type InventoryItemModel struct {
	VersionedRow
	Code                string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                string          `gorm:"type:varchar(200);not null"`
	Unit                string          `gorm:"type:varchar(20);not null"`
	QuantityOnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightedAverageCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem entity.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot:   m.root(),
		Code:                m.Code,
		Name:                m.Name,
		Unit:                m.Unit,
		QuantityOnHand:      m.QuantityOnHand,
		WeightedAverageCost: m.WeightedAverageCost,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem entity.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.setRoot(i.BaseAggregateRoot)
	m.Code = i.Code
	m.Name = i.Name
	m.Unit = i.Unit
	m.QuantityOnHand = i.QuantityOnHand
	m.WeightedAverageCost = i.WeightedAverageCost
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem entity.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// InventoryEntryModel is the persistence model for stock movements.
type InventoryEntryModel struct {
	Row
	InventoryItemID uuid.UUID             `gorm:"type:uuid;not null;index"`
	EntryType       inventory.EntryType   `gorm:"type:varchar(20);not null"`
	Quantity        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalCost       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceBefore   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceAfter    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CostBefore      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CostAfter       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	SourceType      inventory.SourceType  `gorm:"type:varchar(20);not null;index:idx_inventory_entry_source,priority:1"`
	SourceID        string                `gorm:"type:varchar(50);not null;index:idx_inventory_entry_source,priority:2"`
	Reference       string                `gorm:"type:varchar(200)"`
	OccurredAt      time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InventoryEntryModel) TableName() string {
	return "inventory_entries"
}

// ToDomain converts the persistence model to a domain InventoryEntry.
func (m *InventoryEntryModel) ToDomain() *inventory.InventoryEntry {
	return &inventory.InventoryEntry{
		BaseEntity:      m.Row.entity(),
		InventoryItemID: m.InventoryItemID,
		EntryType:       m.EntryType,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		CostBefore:      m.CostBefore,
		CostAfter:       m.CostAfter,
		SourceType:      m.SourceType,
		SourceID:        m.SourceID,
		Reference:       m.Reference,
		OccurredAt:      m.OccurredAt,
	}
}

// InventoryEntryModelFromDomain creates a persistence model from a domain InventoryEntry.
func InventoryEntryModelFromDomain(e *inventory.InventoryEntry) *InventoryEntryModel {
	m := &InventoryEntryModel{
		InventoryItemID: e.InventoryItemID,
		EntryType:       e.EntryType,
		Quantity:        e.Quantity,
		UnitCost:        e.UnitCost,
		TotalCost:       e.TotalCost,
		BalanceBefore:   e.BalanceBefore,
		BalanceAfter:    e.BalanceAfter,
		CostBefore:      e.CostBefore,
		CostAfter:       e.CostAfter,
		SourceType:      e.SourceType,
		SourceID:        e.SourceID,
		Reference:       e.Reference,
		OccurredAt:      e.OccurredAt,
	}
	m.setEntity(e.BaseEntity)
	return m
}
