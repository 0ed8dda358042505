package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSupplierInvoiceRepository implements SupplierInvoiceRepository using GORM
type GormSupplierInvoiceRepository struct {
	db *gorm.DB
}

// NewGormSupplierInvoiceRepository creates a new GormSupplierInvoiceRepository
func NewGormSupplierInvoiceRepository(db *gorm.DB) *GormSupplierInvoiceRepository {
	return &GormSupplierInvoiceRepository{db: db}
}

// FindByID finds an invoice with its lines
func (r *GormSupplierInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.SupplierInvoice, error) {
	var model models.SupplierInvoiceModel
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

// FindByIDForUpdate locks the invoice row and loads the invoice with its lines
func (r *GormSupplierInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.SupplierInvoice, error) {
	if err := lockRow(ctx, r.db, models.SupplierInvoiceModel{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindAll lists invoices with filtering and pagination
func (r *GormSupplierInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.SupplierInvoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierInvoiceModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.SupplierInvoiceModel
	if err := paginate(query, filter, supplierInvoiceSort).
		Preload("Lines").
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	invoices := make([]finance.SupplierInvoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// Save creates or updates an invoice. Line rows are reconciled with
// invoice.Lines: missing rows are deleted, the rest are upserted.
func (r *GormSupplierInvoiceRepository) Save(ctx context.Context, invoice *finance.SupplierInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SupplierInvoiceModelFromDomain(invoice)
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(invoice.Lines))
		for i, line := range invoice.Lines {
			currentLineIDs[i] = line.ID
		}

		del := tx.Where("invoice_id = ?", invoice.ID)
		if len(currentLineIDs) > 0 {
			del = del.Where("id NOT IN ?", currentLineIDs)
		}
		if err := del.Delete(&models.SupplierInvoiceLineModel{}).Error; err != nil {
			return err
		}

		for i := range invoice.Lines {
			invoice.Lines[i].InvoiceID = invoice.ID
			if err := tx.Save(models.SupplierInvoiceLineModelFromDomain(&invoice.Lines[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an invoice and its lines
func (r *GormSupplierInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.SupplierInvoiceLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SupplierInvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByNumber checks if a supplier already used an invoice number
func (r *GormSupplierInvoiceRepository) ExistsByNumber(ctx context.Context, supplierID uuid.UUID, invoiceNumber string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SupplierInvoiceModel{}).
		Where("supplier_id = ? AND invoice_number = ?", supplierID, invoiceNumber)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumSubtotalByOrder sums subtotals of all non-voided invoices of an order
func (r *GormSupplierInvoiceRepository) SumSubtotalByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierInvoiceModel{}).
		Select("COALESCE(SUM(subtotal), 0) as total").
		Where("purchase_order_id = ? AND status <> ?", orderID, finance.InvoiceStatusVoided).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountActiveLinesByReceiptLines counts lines of non-voided invoices matched to the given receipt lines
func (r *GormSupplierInvoiceRepository) CountActiveLinesByReceiptLines(ctx context.Context, receiptLineIDs []uuid.UUID) (int64, error) {
	if len(receiptLineIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierInvoiceLineModel{}).
		Joins("JOIN supplier_invoices ON supplier_invoices.id = supplier_invoice_lines.invoice_id").
		Where("supplier_invoice_lines.receipt_line_id IN ? AND supplier_invoices.status <> ?", receiptLineIDs, finance.InvoiceStatusVoided).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSupplierInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "search":
			if s, ok := value.(string); ok && s != "" {
				query = query.Where("invoice_number LIKE ?", "%"+s+"%")
			}
		}
	}
	return query
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists payments of an invoice, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, nil
}

// Create persists a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByInvoice removes all payments of an invoice
func (r *GormPaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&models.PaymentModel{})
	return result.RowsAffected, result.Error
}

// Ensure the repositories implement their interfaces
var (
	_ finance.SupplierInvoiceRepository = (*GormSupplierInvoiceRepository)(nil)
	_ finance.PaymentRepository         = (*GormPaymentRepository)(nil)
)
