package inventory

import (
	"time"

	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to register a stock item
type CreateItemRequest struct {
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=200"`
	Unit string `json:"unit" binding:"max=20"`
}

// RecordUsageRequest represents stock consumed by field work
type RecordUsageRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reference string          `json:"reference" binding:"max=100"`
}

// InventoryItemResponse represents an inventory item in API responses
type InventoryItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Unit                string          `json:"unit"`
	QuantityOnHand      decimal.Decimal `json:"quantity_on_hand"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	StockValue          decimal.Decimal `json:"stock_value"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Version             int             `json:"version"`
}

// InventoryEntryResponse represents one stock movement
type InventoryEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	EntryType       string          `json:"entry_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	CostBefore      decimal.Decimal `json:"cost_before"`
	CostAfter       decimal.Decimal `json:"cost_after"`
	SourceType      string          `json:"source_type"`
	SourceID        string          `json:"source_id"`
	Reference       string          `json:"reference,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search   string `form:"search"`
	HasStock *bool  `form:"has_stock"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// EntryListFilter represents filter options for an item's movements
type EntryListFilter struct {
	EntryType string `form:"entry_type" binding:"omitempty,oneof=RECEIPT USAGE"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f ItemListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy, filter.OrderDir = "code", "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	if f.Search != "" {
		filter.Filters["search"] = f.Search
	}
	if f.HasStock != nil && *f.HasStock {
		filter.Filters["has_stock"] = true
	}
	return filter
}

func (f EntryListFilter) toDomain() shared.Filter {
	filter := shared.Filter{Page: 1, PageSize: 50, Filters: map[string]interface{}{}}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.EntryType != "" {
		filter.Filters["entry_type"] = f.EntryType
	}
	return filter
}

// ToInventoryItemResponse converts a domain item to a response DTO
func ToInventoryItemResponse(item *inventory.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:                  item.ID,
		Code:                item.Code,
		Name:                item.Name,
		Unit:                item.Unit,
		QuantityOnHand:      item.QuantityOnHand,
		WeightedAverageCost: item.WeightedAverageCost,
		StockValue:          item.StockValue(),
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
		Version:             item.Version,
	}
}

// ToInventoryEntryResponse converts a domain entry to a response DTO
func ToInventoryEntryResponse(e *inventory.InventoryEntry) InventoryEntryResponse {
	return InventoryEntryResponse{
		ID:              e.ID,
		InventoryItemID: e.InventoryItemID,
		EntryType:       string(e.EntryType),
		Quantity:        e.Quantity,
		UnitCost:        e.UnitCost,
		TotalCost:       e.TotalCost,
		BalanceBefore:   e.BalanceBefore,
		BalanceAfter:    e.BalanceAfter,
		CostBefore:      e.CostBefore,
		CostAfter:       e.CostAfter,
		SourceType:      string(e.SourceType),
		SourceID:        e.SourceID,
		Reference:       e.Reference,
		OccurredAt:      e.OccurredAt,
	}
}
