package dto

import (
	"net/http"

	"github.com/fieldops/backend/internal/domain/shared"
)

// API error codes, ERR_<NAME>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"

	// Business rejections: the request was understood but the ledger
	// refuses it.
	ErrCodeOverReceipt   = "ERR_OVER_RECEIPT"
	ErrCodeOverpayment   = "ERR_OVERPAYMENT"
	ErrCodeNegativeStock = "ERR_NEGATIVE_STOCK"
)

var statusByCode = map[string]int{
	ErrCodeUnknown:             http.StatusInternalServerError,
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,
	ErrCodeOverReceipt:         http.StatusUnprocessableEntity,
	ErrCodeOverpayment:         http.StatusUnprocessableEntity,
	ErrCodeNegativeStock:       http.StatusUnprocessableEntity,
}

var apiCodeByDomain = map[string]string{
	shared.CodeValidation:          ErrCodeValidation,
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeInvalidState:        ErrCodeInvalidState,
	shared.CodeOverReceipt:         ErrCodeOverReceipt,
	shared.CodeOverpayment:         ErrCodeOverpayment,
	shared.CodeNegativeStock:       ErrCodeNegativeStock,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
	shared.CodeDuplicateRequest:    ErrCodeDuplicateRequest,
}

// APICode translates a domain error code into its ERR_ form. API codes and
// codes it does not know pass through unchanged.
func APICode(code string) string {
	if api, ok := apiCodeByDomain[code]; ok {
		return api
	}
	return code
}

// StatusFor returns the HTTP status answered for a domain or API error code.
// Unmapped codes are server errors.
func StatusFor(code string) int {
	if status, ok := statusByCode[APICode(code)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
