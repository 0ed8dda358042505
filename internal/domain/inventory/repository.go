package inventory

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItemRepository defines persistence for inventory items
type InventoryItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByIDForUpdate finds an item and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByCode finds an item by its unique code
	FindByCode(ctx context.Context, code string) (*InventoryItem, error)

	// FindAll lists items
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryItem, int64, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *InventoryItem) error

	// ExistsByCode checks if an item code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// InventoryEntryRepository defines persistence for stock movements
type InventoryEntryRepository interface {
	// FindByID finds an entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryEntry, error)

	// FindByItem lists the movements of an item, oldest first
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]InventoryEntry, int64, error)

	// Create appends a movement
	Create(ctx context.Context, entry *InventoryEntry) error

	// Delete removes a movement as part of a reversal
	Delete(ctx context.Context, id uuid.UUID) error
}
