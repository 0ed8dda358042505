package models

import (
	"time"

	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for the BankAccount aggregate root.
type BankAccountModel struct {
	VersionedRow
	Name           string          `gorm:"type:varchar(100);not null"`
	AccountNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'USD'"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount.
func (m *BankAccountModel) ToDomain() *treasury.BankAccount {
	return &treasury.BankAccount{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		AccountNumber:     m.AccountNumber,
		Currency:          m.Currency,
		OpeningBalance:    m.OpeningBalance,
		Balance:           m.Balance,
	}
}

// BankAccountModelFromDomain creates a persistence model from a domain BankAccount.
func BankAccountModelFromDomain(a *treasury.BankAccount) *BankAccountModel {
	m := &BankAccountModel{
		Name:           a.Name,
		AccountNumber:  a.AccountNumber,
		Currency:       a.Currency,
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
	}
	m.setRoot(a.BaseAggregateRoot)
	return m
}

// TreasuryMovementModel is the persistence model for treasury movements.
type TreasuryMovementModel struct {
	Row
	Type                 treasury.MovementType `gorm:"type:varchar(20);not null;index"`
	Amount               decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	SourceAccountID      *uuid.UUID            `gorm:"type:uuid;index"`
	DestinationAccountID *uuid.UUID            `gorm:"type:uuid;index"`
	PaymentID            *uuid.UUID            `gorm:"type:uuid;uniqueIndex"`
	Reference            string                `gorm:"type:varchar(100)"`
	Description          string                `gorm:"type:varchar(500)"`
	OccurredAt           time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TreasuryMovementModel) TableName() string {
	return "treasury_movements"
}

// ToDomain converts the persistence model to a domain TreasuryMovement.
func (m *TreasuryMovementModel) ToDomain() *treasury.TreasuryMovement {
	return &treasury.TreasuryMovement{
		BaseEntity:           m.Row.entity(),
		Type:                 m.Type,
		Amount:               m.Amount,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		PaymentID:            m.PaymentID,
		Reference:            m.Reference,
		Description:          m.Description,
		OccurredAt:           m.OccurredAt,
	}
}

// TreasuryMovementModelFromDomain creates a persistence model from a domain TreasuryMovement.
func TreasuryMovementModelFromDomain(mv *treasury.TreasuryMovement) *TreasuryMovementModel {
	m := &TreasuryMovementModel{
		Type:                 mv.Type,
		Amount:               mv.Amount,
		SourceAccountID:      mv.SourceAccountID,
		DestinationAccountID: mv.DestinationAccountID,
		PaymentID:            mv.PaymentID,
		Reference:            mv.Reference,
		Description:          mv.Description,
		OccurredAt:           mv.OccurredAt,
	}
	m.setEntity(mv.BaseEntity)
	return m
}
