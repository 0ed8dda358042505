package treasury

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest represents a request to open a bank account
type CreateBankAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	AccountNumber  string          `json:"account_number" binding:"required,min=1,max=50"`
	Currency       string          `json:"currency" binding:"omitempty,len=3"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// BankAccountListFilter represents filter options for the account list
type BankAccountListFilter struct {
	Currency string `form:"currency"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f BankAccountListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Currency != "" {
		filter.Filters["currency"] = f.Currency
	}
	return filter
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	AccountNumber  string          `json:"account_number"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToBankAccountResponse converts a domain account to a response DTO
func ToBankAccountResponse(a *treasury.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		AccountNumber:  a.AccountNumber,
		Currency:       a.Currency,
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Version:        a.Version,
	}
}

// MovementRequest is the content of a manual treasury movement, used for
// both create and update
type MovementRequest struct {
	Type                 string          `json:"type" binding:"required,oneof=INFLOW OUTFLOW TRANSFER"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	SourceAccountID      *uuid.UUID      `json:"source_account_id"`
	DestinationAccountID *uuid.UUID      `json:"destination_account_id"`
	Reference            string          `json:"reference" binding:"max=100"`
	Description          string          `json:"description" binding:"max=500"`
	OccurredAt           *time.Time      `json:"occurred_at"`
}

func (r MovementRequest) occurredAt() time.Time {
	if r.OccurredAt == nil {
		return time.Time{}
	}
	return *r.OccurredAt
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	AccountID *uuid.UUID `form:"account_id"`
	Type      string     `form:"type"`
	PaymentID *uuid.UUID `form:"payment_id"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f MovementListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = "occurred_at"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.AccountID != nil {
		filter.Filters["account_id"] = *f.AccountID
	}
	if f.Type != "" {
		filter.Filters["type"] = f.Type
	}
	if f.PaymentID != nil {
		filter.Filters["payment_id"] = *f.PaymentID
	}
	return filter
}

// MovementResponse represents a treasury movement in API responses
type MovementResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Type                 string          `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	SourceAccountID      *uuid.UUID      `json:"source_account_id,omitempty"`
	DestinationAccountID *uuid.UUID      `json:"destination_account_id,omitempty"`
	PaymentID            *uuid.UUID      `json:"payment_id,omitempty"`
	Reference            string          `json:"reference,omitempty"`
	Description          string          `json:"description,omitempty"`
	OccurredAt           time.Time       `json:"occurred_at"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ToMovementResponse converts a domain movement to a response DTO
func ToMovementResponse(m *treasury.TreasuryMovement) MovementResponse {
	return MovementResponse{
		ID:                   m.ID,
		Type:                 string(m.Type),
		Amount:               m.Amount,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		PaymentID:            m.PaymentID,
		Reference:            m.Reference,
		Description:          m.Description,
		OccurredAt:           m.OccurredAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
