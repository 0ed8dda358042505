package treasury

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BankAccount holds a running balance. The balance is never recomputed from
// movements; every movement applies its delta and every reversal applies the
// exact inverse.
type BankAccount struct {
	shared.BaseAggregateRoot
	Name           string
	AccountNumber  string
	Currency       string
	OpeningBalance decimal.Decimal
	Balance        decimal.Decimal
}

// NewBankAccount creates an account with an opening balance
func NewBankAccount(name, accountNumber, currency string, openingBalance decimal.Decimal) (*BankAccount, error) {
	name = strings.TrimSpace(name)
	accountNumber = strings.TrimSpace(accountNumber)
	if name == "" {
		return nil, shared.NewValidationError("Account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewValidationError("Account number cannot be empty")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, shared.NewValidationError("Currency must be a 3-letter ISO code")
	}
	if err := shared.CheckScale("Opening balance", openingBalance); err != nil {
		return nil, err
	}

	return &BankAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		AccountNumber:     accountNumber,
		Currency:          currency,
		OpeningBalance:    openingBalance,
		Balance:           openingBalance,
	}, nil
}

// ApplyDelta adds a signed amount to the balance. No floor is enforced;
// overdrafts are allowed.
func (a *BankAccount) ApplyDelta(delta decimal.Decimal) {
	if delta.IsZero() {
		return
	}
	a.Balance = a.Balance.Add(delta)
	a.IncrementVersion()
}
