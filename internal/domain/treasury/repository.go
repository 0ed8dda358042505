package treasury

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	// FindByID finds an account
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)

	// FindByIDForUpdate loads an account and holds its row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*BankAccount, error)

	// FindAll lists accounts
	FindAll(ctx context.Context, filter shared.Filter) ([]BankAccount, int64, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *BankAccount) error

	// ExistsByNumber checks if an account number is registered
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
}

// TreasuryMovementRepository defines the interface for movement persistence
type TreasuryMovementRepository interface {
	// FindByID finds a movement
	FindByID(ctx context.Context, id uuid.UUID) (*TreasuryMovement, error)

	// FindByIDForUpdate loads a movement and holds its row lock, so the
	// effect it reverses is the one currently stored
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*TreasuryMovement, error)

	// FindAll lists movements. Supported filters: account_id, type.
	FindAll(ctx context.Context, filter shared.Filter) ([]TreasuryMovement, int64, error)

	// Create persists a new movement
	Create(ctx context.Context, movement *TreasuryMovement) error

	// Update persists changes to a movement
	Update(ctx context.Context, movement *TreasuryMovement) error

	// Delete removes a movement
	Delete(ctx context.Context, id uuid.UUID) error
}
