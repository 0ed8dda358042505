package inventory

import (
	"context"

	"github.com/fieldops/backend/internal/application/common"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const spanService = "inventory"

// InventoryService handles stock items and field usage.
// Receipts move stock through the receiving service, never through here.
type InventoryService struct {
	scope uow.Scope
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope uow.Scope) *InventoryService {
	return &InventoryService{scope: scope}
}

// CreateItem registers an item with no stock and zero cost
func (s *InventoryService) CreateItem(ctx context.Context, req CreateItemRequest) (*InventoryItemResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanService, "create_item")
	defer span.End()

	item, err := inventory.NewInventoryItem(req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, common.Fail(ctx, span, "Inventory item rejected", err)
	}

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		exists, err := repos.InventoryItems().ExistsByCode(ctx, item.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewValidationError("Item code " + item.Code + " already exists")
		}
		return repos.InventoryItems().Save(ctx, item)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Inventory item rejected", err)
	}

	logger.L(ctx).Info("Inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("code", item.Code))
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// GetItem retrieves an item by ID
func (s *InventoryService) GetItem(ctx context.Context, itemID uuid.UUID) (*InventoryItemResponse, error) {
	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		item, err = repos.InventoryItems().FindByID(ctx, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// ListItems lists items with pagination
func (s *InventoryService) ListItems(ctx context.Context, filter ItemListFilter) ([]InventoryItemResponse, int64, error) {
	var (
		items []inventory.InventoryItem
		total int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		items, total, err = repos.InventoryItems().FindAll(ctx, filter.toDomain())
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]InventoryItemResponse, len(items))
	for i := range items {
		out[i] = ToInventoryItemResponse(&items[i])
	}
	return out, total, nil
}

// ListEntries lists the movements of an item, oldest first
func (s *InventoryService) ListEntries(ctx context.Context, itemID uuid.UUID, filter EntryListFilter) ([]InventoryEntryResponse, int64, error) {
	var (
		entries []inventory.InventoryEntry
		total   int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.InventoryItems().FindByID(ctx, itemID); err != nil {
			return err
		}
		var err error
		entries, total, err = repos.InventoryEntries().FindByItem(ctx, itemID, filter.toDomain())
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]InventoryEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToInventoryEntryResponse(&entries[i])
	}
	return out, total, nil
}

// RecordUsage takes stock out at the current average cost.
// The average cost is unchanged; going below zero fails with NegativeStock.
func (s *InventoryService) RecordUsage(ctx context.Context, itemID uuid.UUID, req RecordUsageRequest) (*InventoryEntryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanService, "record_usage",
		telemetry.AttrItemID.String(itemID.String()))
	defer span.End()

	var entry *inventory.InventoryEntry
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		item, err := repos.InventoryItems().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		entry, err = item.Consume(req.Quantity, inventory.SourceTypeUsage, req.Reference)
		if err != nil {
			return err
		}
		entry.Reference = req.Reference
		if err := repos.InventoryEntries().Create(ctx, entry); err != nil {
			return err
		}
		return repos.InventoryItems().Save(ctx, item)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Inventory usage rejected", err)
	}

	logger.L(ctx).Info("Inventory usage recorded",
		zap.String("item_id", itemID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("quantity", entry.Quantity.String()))
	resp := ToInventoryEntryResponse(entry)
	return &resp, nil
}

// ReverseUsage deletes a usage entry and merges its quantity back at the
// unit cost it left with. Receipt entries are reversed only by deleting
// their receipt.
func (s *InventoryService) ReverseUsage(ctx context.Context, entryID uuid.UUID) (*InventoryItemResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanService, "reverse_usage")
	defer span.End()

	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		entry, err := repos.InventoryEntries().FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		item, err = repos.InventoryItems().FindByIDForUpdate(ctx, entry.InventoryItemID)
		if err != nil {
			return err
		}
		if err := item.ReverseConsumption(entry); err != nil {
			return err
		}
		if err := repos.InventoryEntries().Delete(ctx, entry.ID); err != nil {
			return err
		}
		return repos.InventoryItems().Save(ctx, item)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Inventory usage reversal rejected", err)
	}

	logger.L(ctx).Info("Inventory usage reversed",
		zap.String("item_id", item.ID.String()),
		zap.String("entry_id", entryID.String()))
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}
