package treasury

import (
	"context"

	"github.com/fieldops/backend/internal/application/common"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TreasuryService manages bank accounts and manual treasury movements.
// Every movement change applies its balance effect, or the exact inverse,
// in the same unit of work.
type TreasuryService struct {
	scope uow.Scope
}

// NewTreasuryService creates a new TreasuryService
func NewTreasuryService(scope uow.Scope) *TreasuryService {
	return &TreasuryService{scope: scope}
}

// CreateAccount opens a bank account with its opening balance
func (s *TreasuryService) CreateAccount(ctx context.Context, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "treasury", "create_account")
	defer span.End()

	account, err := treasury.NewBankAccount(req.Name, req.AccountNumber, req.Currency, req.OpeningBalance)
	if err != nil {
		return nil, common.Fail(ctx, span, "Bank account rejected", err)
	}

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		exists, err := repos.BankAccounts().ExistsByNumber(ctx, account.AccountNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewValidationError("Account number " + account.AccountNumber + " is already registered")
		}
		return repos.BankAccounts().Save(ctx, account)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Bank account rejected", err)
	}

	span.SetAttributes(telemetry.AttrAccountID.String(account.ID.String()))
	logger.L(ctx).Info("Bank account created",
		zap.String("account_id", account.ID.String()),
		zap.String("currency", account.Currency),
		zap.String("opening_balance", account.OpeningBalance.String()))
	resp := ToBankAccountResponse(account)
	return &resp, nil
}

// GetAccount retrieves a bank account
func (s *TreasuryService) GetAccount(ctx context.Context, accountID uuid.UUID) (*BankAccountResponse, error) {
	var account *treasury.BankAccount
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		account, err = repos.BankAccounts().FindByID(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToBankAccountResponse(account)
	return &resp, nil
}

// ListAccounts retrieves a page of bank accounts
func (s *TreasuryService) ListAccounts(ctx context.Context, filter BankAccountListFilter) ([]BankAccountResponse, int64, error) {
	var (
		accounts []treasury.BankAccount
		total    int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		accounts, total, err = repos.BankAccounts().FindAll(ctx, filter.toDomain())
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToBankAccountResponse(&accounts[i])
	}
	return out, total, nil
}

// CreateMovement posts a manual movement and applies it to the account balances
func (s *TreasuryService) CreateMovement(ctx context.Context, req MovementRequest) (*MovementResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "treasury", "create_movement",
		telemetry.AttrAmount.String(req.Amount.String()))
	defer span.End()

	movement, err := treasury.NewTreasuryMovement(treasury.MovementType(req.Type), req.Amount,
		req.SourceAccountID, req.DestinationAccountID, req.Reference, req.occurredAt())
	if err != nil {
		return nil, common.Fail(ctx, span, "Movement rejected", err)
	}
	movement.Description = req.Description

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := uow.ApplyBalanceDeltas(ctx, repos.BankAccounts(), movement.Effects()); err != nil {
			return err
		}
		return repos.TreasuryMovements().Create(ctx, movement)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Movement rejected", err)
	}

	span.SetAttributes(telemetry.AttrMovementID.String(movement.ID.String()))
	logger.L(ctx).Info("Treasury movement posted",
		zap.String("movement_id", movement.ID.String()),
		zap.String("type", string(movement.Type)),
		zap.String("amount", movement.Amount.String()))
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// UpdateMovement replaces a manual movement. The movement row is locked
// first, then the old effect is reversed and the new one applied with the
// accounts of both locked together.
func (s *TreasuryService) UpdateMovement(ctx context.Context, movementID uuid.UUID, req MovementRequest) (*MovementResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "treasury", "update_movement",
		telemetry.AttrMovementID.String(movementID.String()))
	defer span.End()

	var movement *treasury.TreasuryMovement
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		movement, err = repos.TreasuryMovements().FindByIDForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		deltas := movement.InverseEffects()
		if err := movement.Update(treasury.MovementType(req.Type), req.Amount,
			req.SourceAccountID, req.DestinationAccountID, req.Reference, req.occurredAt()); err != nil {
			return err
		}
		movement.Description = req.Description
		deltas = append(deltas, movement.Effects()...)

		if err := uow.ApplyBalanceDeltas(ctx, repos.BankAccounts(), deltas); err != nil {
			return err
		}
		return repos.TreasuryMovements().Update(ctx, movement)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Movement update rejected", err)
	}

	logger.L(ctx).Info("Treasury movement updated",
		zap.String("movement_id", movement.ID.String()),
		zap.String("type", string(movement.Type)),
		zap.String("amount", movement.Amount.String()))
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// DeleteMovement removes a manual movement and applies its exact inverse.
// Payment movements are removed only by deleting the payment.
func (s *TreasuryService) DeleteMovement(ctx context.Context, movementID uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "treasury", "delete_movement",
		telemetry.AttrMovementID.String(movementID.String()))
	defer span.End()

	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		movement, err := repos.TreasuryMovements().FindByIDForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if err := movement.EnsureManual(); err != nil {
			return err
		}
		if err := uow.ApplyBalanceDeltas(ctx, repos.BankAccounts(), movement.InverseEffects()); err != nil {
			return err
		}
		return repos.TreasuryMovements().Delete(ctx, movement.ID)
	})
	if err != nil {
		return common.Fail(ctx, span, "Movement deletion rejected", err)
	}

	logger.L(ctx).Info("Treasury movement deleted", zap.String("movement_id", movementID.String()))
	return nil
}

// GetMovement retrieves a movement
func (s *TreasuryService) GetMovement(ctx context.Context, movementID uuid.UUID) (*MovementResponse, error) {
	var movement *treasury.TreasuryMovement
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		movement, err = repos.TreasuryMovements().FindByID(ctx, movementID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// ListMovements retrieves a page of movements, newest first
func (s *TreasuryService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Type != "" && !treasury.MovementType(filter.Type).IsValid() {
		return nil, 0, shared.NewValidationError("Unknown movement type " + filter.Type)
	}

	var (
		movements []treasury.TreasuryMovement
		total     int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		movements, total, err = repos.TreasuryMovements().FindAll(ctx, filter.toDomain())
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, total, nil
}
