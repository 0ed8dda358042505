package inventory

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostScale is the number of decimal places kept on the weighted-average unit cost
const CostScale = shared.Scale

// InventoryItem is a stock item valued at moving weighted-average cost.
// It is mutated only by receiving, usage and their reversals.
type InventoryItem struct {
	shared.BaseAggregateRoot
	Code                string
	Name                string
	Unit                string
	QuantityOnHand      decimal.Decimal
	WeightedAverageCost decimal.Decimal
}

// NewInventoryItem creates a new item with no stock
func NewInventoryItem(code, name, unit string) (*InventoryItem, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("Item code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("Item code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewValidationError("Item name cannot be empty")
	}
	if unit == "" {
		unit = "unit"
	}

	return &InventoryItem{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Code:                code,
		Name:                name,
		Unit:                unit,
		QuantityOnHand:      decimal.Zero,
		WeightedAverageCost: decimal.Zero,
	}, nil
}

// StockValue returns the on-hand quantity valued at the current average cost
func (i *InventoryItem) StockValue() decimal.Decimal {
	return shared.RoundAmount(i.QuantityOnHand.Mul(i.WeightedAverageCost))
}

// ReceiveStock adds quantity at the given unit price and reprices the item.
//
//	newAvg = (oldQty*oldAvg + qty*price) / (oldQty + qty)
//
// Returns the entry describing the movement; the caller persists it.
func (i *InventoryItem) ReceiveStock(quantity, unitPrice decimal.Decimal, source SourceType, sourceID string) (*InventoryEntry, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Received quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	if err := shared.CheckScale("Received quantity", quantity); err != nil {
		return nil, err
	}
	if err := shared.CheckScale("Unit price", unitPrice); err != nil {
		return nil, err
	}

	entry := newEntry(i, EntryTypeReceipt, quantity, unitPrice, source, sourceID)
	i.mergeIn(quantity, unitPrice)
	entry.close(i)
	return entry, nil
}

// ReverseReceipt removes a previously received quantity.
// The average cost is left untouched: a moving average cannot be inverted
// without lot history.
func (i *InventoryItem) ReverseReceipt(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("Reversed quantity must be positive")
	}
	if i.QuantityOnHand.LessThan(quantity) {
		return shared.NewDomainError(shared.CodeNegativeStock,
			"Reversing receipt would leave item "+i.Code+" with negative stock")
	}

	i.QuantityOnHand = i.QuantityOnHand.Sub(quantity)
	i.IncrementVersion()
	return nil
}

// Consume takes quantity out of stock at the current average cost
func (i *InventoryItem) Consume(quantity decimal.Decimal, source SourceType, sourceID string) (*InventoryEntry, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Usage quantity must be positive")
	}
	if err := shared.CheckScale("Usage quantity", quantity); err != nil {
		return nil, err
	}
	if i.QuantityOnHand.LessThan(quantity) {
		return nil, shared.NewDomainError(shared.CodeNegativeStock,
			"Insufficient stock for item "+i.Code)
	}

	entry := newEntry(i, EntryTypeUsage, quantity, i.WeightedAverageCost, source, sourceID)
	i.QuantityOnHand = i.QuantityOnHand.Sub(quantity)
	i.IncrementVersion()
	entry.close(i)
	return entry, nil
}

// ReverseConsumption puts a consumed quantity back at the cost it left with
func (i *InventoryItem) ReverseConsumption(entry *InventoryEntry) error {
	if entry == nil || entry.InventoryItemID != i.ID {
		return shared.NewValidationError("Entry does not belong to this item")
	}
	if entry.EntryType != EntryTypeUsage {
		return shared.NewInvalidStateError("Only usage entries can be reversed directly")
	}
	i.mergeIn(entry.Quantity, entry.UnitCost)
	return nil
}

func (i *InventoryItem) mergeIn(quantity, unitCost decimal.Decimal) {
	i.WeightedAverageCost = WeightedAverage(i.QuantityOnHand, i.WeightedAverageCost, quantity, unitCost)
	i.QuantityOnHand = i.QuantityOnHand.Add(quantity)
	i.IncrementVersion()
}

// WeightedAverage merges an incoming lot into an existing average.
// A resulting quantity of zero yields a zero average.
func WeightedAverage(oldQty, oldAvg, qty, price decimal.Decimal) decimal.Decimal {
	total := oldQty.Add(qty)
	if total.IsZero() {
		return decimal.Zero
	}
	if oldQty.IsZero() {
		return price.Round(CostScale)
	}
	value := oldQty.Mul(oldAvg).Add(qty.Mul(price))
	return value.Div(total).Round(CostScale)
}
