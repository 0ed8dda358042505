package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the item row and loads it
func (r *GormInventoryItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	if err := lockRow(ctx, r.db, models.InventoryItemModel{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByCode finds an inventory item by its code
func (r *GormInventoryItemRepository) FindByCode(ctx context.Context, code string) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists inventory items with filtering and pagination
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InventoryItemModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var itemModels []models.InventoryItemModel
	if err := paginate(query, filter, inventoryItemSort).Find(&itemModels).Error; err != nil {
		return nil, 0, err
	}
	items := make([]inventory.InventoryItem, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items, total, nil
}

// Save creates or updates an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return r.db.WithContext(ctx).Save(models.InventoryItemModelFromDomain(item)).Error
}

// ExistsByCode checks if an item with the given code exists
func (r *GormInventoryItemRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormInventoryItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "search":
			if s, ok := value.(string); ok && s != "" {
				like := "%" + s + "%"
				query = query.Where("(code LIKE ? OR name LIKE ?)", like, like)
			}
		case "has_stock":
			if value == true {
				query = query.Where("quantity_on_hand > 0")
			}
		}
	}
	return query
}

// GormInventoryEntryRepository implements InventoryEntryRepository using GORM
type GormInventoryEntryRepository struct {
	db *gorm.DB
}

// NewGormInventoryEntryRepository creates a new GormInventoryEntryRepository
func NewGormInventoryEntryRepository(db *gorm.DB) *GormInventoryEntryRepository {
	return &GormInventoryEntryRepository{db: db}
}

// FindByID finds an entry by its ID
func (r *GormInventoryEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryEntry, error) {
	var model models.InventoryEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByItem lists the movements of an item, oldest first unless the filter says otherwise
func (r *GormInventoryEntryRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]inventory.InventoryEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryEntryModel{}).Where("inventory_item_id = ?", itemID)
	if t, ok := filter.Filters["entry_type"]; ok {
		query = query.Where("entry_type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "occurred_at", "ASC"
	}
	var entryModels []models.InventoryEntryModel
	if err := paginate(query, filter, inventoryEntrySort).Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]inventory.InventoryEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, total, nil
}

// Create appends a movement
func (r *GormInventoryEntryRepository) Create(ctx context.Context, entry *inventory.InventoryEntry) error {
	return r.db.WithContext(ctx).Create(models.InventoryEntryModelFromDomain(entry)).Error
}

// Delete removes a movement
func (r *GormInventoryEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InventoryEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure the repositories implement their interfaces
var (
	_ inventory.InventoryItemRepository  = (*GormInventoryItemRepository)(nil)
	_ inventory.InventoryEntryRepository = (*GormInventoryEntryRepository)(nil)
)
