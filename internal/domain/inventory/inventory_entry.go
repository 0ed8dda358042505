package inventory

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of an inventory movement
type EntryType string

const (
	// EntryTypeReceipt is stock coming in from a supplier receipt
	EntryTypeReceipt EntryType = "RECEIPT"
	// EntryTypeUsage is stock consumed by operations
	EntryTypeUsage EntryType = "USAGE"
)

// IsValid returns true if the entry type is known
func (t EntryType) IsValid() bool {
	return t == EntryTypeReceipt || t == EntryTypeUsage
}

// SourceType identifies the document that caused a movement
type SourceType string

const (
	SourceTypeReceipt SourceType = "RECEIPT"
	SourceTypeUsage   SourceType = "USAGE"
)

// InventoryEntry is an immutable record of one stock movement.
// Entries are never edited; reversal deletes them.
type InventoryEntry struct {
	shared.BaseEntity
	InventoryItemID uuid.UUID
	EntryType       EntryType
	Quantity        decimal.Decimal // always positive, direction from EntryType
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	BalanceBefore   decimal.Decimal
	BalanceAfter    decimal.Decimal
	CostBefore      decimal.Decimal
	CostAfter       decimal.Decimal
	SourceType      SourceType
	SourceID        string
	Reference       string
	OccurredAt      time.Time
}

func newEntry(item *InventoryItem, t EntryType, qty, unitCost decimal.Decimal, source SourceType, sourceID string) *InventoryEntry {
	return &InventoryEntry{
		BaseEntity:      shared.NewBaseEntity(),
		InventoryItemID: item.ID,
		EntryType:       t,
		Quantity:        qty,
		UnitCost:        unitCost,
		TotalCost:       shared.RoundAmount(qty.Mul(unitCost)),
		BalanceBefore:   item.QuantityOnHand,
		CostBefore:      item.WeightedAverageCost,
		SourceType:      source,
		SourceID:        sourceID,
		OccurredAt:      time.Now(),
	}
}

func (e *InventoryEntry) close(item *InventoryItem) {
	e.BalanceAfter = item.QuantityOnHand
	e.CostAfter = item.WeightedAverageCost
}

// SignedQuantity returns the quantity with the sign of its effect on stock
func (e *InventoryEntry) SignedQuantity() decimal.Decimal {
	if e.EntryType == EntryTypeUsage {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
