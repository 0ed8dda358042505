package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository stores purchase orders and their lines
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// linesInEntryOrder keeps order lines in the order they were entered
func linesInEntryOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *GormPurchaseOrderRepository) findOne(ctx context.Context, cond string, arg any) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Preload("Lines", linesInEntryOrder).
		Where(cond, arg).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByIDForUpdate takes the order's row lock before loading it. The lock
// is held until the surrounding transaction ends.
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	if err := lockRow(ctx, r.db, models.PurchaseOrderModel{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, int64, error) {
	query := purchaseOrderFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []trade.PurchaseOrder{}, 0, nil
	}

	var rows []models.PurchaseOrderModel
	if err := paginate(query, filter, purchaseOrderSort).Preload("Lines", linesInEntryOrder).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]trade.PurchaseOrder, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, total, nil
}

// Save writes the order header, upserts its current lines and removes the
// lines that are no longer part of the order.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(models.PurchaseOrderModelFromDomain(order)).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(order.Lines))
		lines := make([]*models.PurchaseOrderLineModel, 0, len(order.Lines))
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			keep = append(keep, order.Lines[i].ID)
			lines = append(lines, models.PurchaseOrderLineModelFromDomain(&order.Lines[i]))
		}

		stale := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&lines).Error
	})
}

// GenerateOrderNumber returns the next PO-YYYY-NNNNN number
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &models.PurchaseOrderModel{}, "order_number", "PO")
}

func purchaseOrderFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", v)
	}
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if s, ok := filter.Filters["search"].(string); ok && s != "" {
		query = query.Where("order_number LIKE ?", "%"+s+"%")
	}
	return query
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
