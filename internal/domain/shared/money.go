package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places stored for every quantity, price,
// amount and balance (numeric(18,4) columns)
const Scale int32 = 4

// maxIntegerDigits is what numeric(18,4) leaves left of the point
const maxIntegerDigits = 18 - Scale

var amountLimit = decimal.New(1, maxIntegerDigits)

// RoundAmount rounds a derived value (a product or quotient) to the stored scale
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// CheckScale rejects a caller-supplied value the database could not store
// exactly: more than Scale decimal places or more than 14 integer digits.
func CheckScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(Scale)) {
		return NewValidationError(fmt.Sprintf("%s %s has more than %d decimal places", field, d, Scale))
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return NewValidationError(fmt.Sprintf("%s %s is out of range", field, d))
	}
	return nil
}
