package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt with its lines
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the receipts of an order, oldest first
func (r *GormReceiptRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("purchase_order_id = ?", orderID).
		Order("received_at ASC").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	receipts := make([]trade.Receipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = *receiptModels[i].ToDomain()
	}
	return receipts, nil
}

// FindLineByID finds a single receipt line
func (r *GormReceiptRepository) FindLineByID(ctx context.Context, lineID uuid.UUID) (*trade.ReceiptLine, error) {
	var model models.ReceiptLineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new receipt and its lines
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *trade.Receipt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ReceiptModelFromDomain(receipt)
		if err := tx.Omit("Lines").Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		for i := range model.Lines {
			model.Lines[i].ReceiptID = receipt.ID
		}
		return tx.Create(&model.Lines).Error
	})
}

// Delete removes a receipt and its lines
func (r *GormReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&models.ReceiptLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ReceiptModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GenerateReceiptNumber generates a unique receipt number
// Format: GR-YYYY-NNNNN (e.g., GR-2026-00001)
func (r *GormReceiptRepository) GenerateReceiptNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, &models.ReceiptModel{}, "receipt_number", "GR")
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ trade.ReceiptRepository = (*GormReceiptRepository)(nil)
