package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/fieldops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by its ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the account row and loads it
func (r *GormBankAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*treasury.BankAccount, error) {
	if err := lockRow(ctx, r.db, models.BankAccountModel{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindAll lists bank accounts
func (r *GormBankAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]treasury.BankAccount, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BankAccountModel{})
	if currency, ok := filter.Filters["currency"]; ok {
		query = query.Where("currency = ?", currency)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accountModels []models.BankAccountModel
	if err := paginate(query, filter, bankAccountSort).Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}
	accounts := make([]treasury.BankAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, total, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *treasury.BankAccount) error {
	return r.db.WithContext(ctx).Save(models.BankAccountModelFromDomain(account)).Error
}

// ExistsByNumber checks if an account number is registered
func (r *GormBankAccountRepository) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BankAccountModel{}).
		Where("account_number = ?", accountNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormTreasuryMovementRepository implements TreasuryMovementRepository using GORM
type GormTreasuryMovementRepository struct {
	db *gorm.DB
}

// NewGormTreasuryMovementRepository creates a new GormTreasuryMovementRepository
func NewGormTreasuryMovementRepository(db *gorm.DB) *GormTreasuryMovementRepository {
	return &GormTreasuryMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormTreasuryMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.TreasuryMovement, error) {
	var model models.TreasuryMovementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the movement row and loads it
func (r *GormTreasuryMovementRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*treasury.TreasuryMovement, error) {
	if err := lockRow(ctx, r.db, models.TreasuryMovementModel{}.TableName(), id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindAll lists movements, newest first by default
func (r *GormTreasuryMovementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]treasury.TreasuryMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TreasuryMovementModel{})
	for key, value := range filter.Filters {
		switch key {
		case "account_id":
			query = query.Where("(source_account_id = ? OR destination_account_id = ?)", value, value)
		case "type":
			query = query.Where("type = ?", value)
		case "payment_id":
			query = query.Where("payment_id = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movementModels []models.TreasuryMovementModel
	if err := paginate(query, filter, treasuryMovementSort).Find(&movementModels).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]treasury.TreasuryMovement, len(movementModels))
	for i := range movementModels {
		movements[i] = *movementModels[i].ToDomain()
	}
	return movements, total, nil
}

// Create persists a new movement
func (r *GormTreasuryMovementRepository) Create(ctx context.Context, movement *treasury.TreasuryMovement) error {
	return r.db.WithContext(ctx).Create(models.TreasuryMovementModelFromDomain(movement)).Error
}

// Update persists changes to a movement
func (r *GormTreasuryMovementRepository) Update(ctx context.Context, movement *treasury.TreasuryMovement) error {
	return r.db.WithContext(ctx).Save(models.TreasuryMovementModelFromDomain(movement)).Error
}

// Delete removes a movement
func (r *GormTreasuryMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TreasuryMovementModel{}, "id = ?", id)
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
	_ treasury.BankAccountRepository      = (*GormBankAccountRepository)(nil)
	_ treasury.TreasuryMovementRepository = (*GormTreasuryMovementRepository)(nil)
)
