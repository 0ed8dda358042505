package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator configures gin's validator: field errors are reported under
// their JSON (or query) names, and decimal amounts are validated by value so
// `required` rejects a missing or zero quantity.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok || d.IsZero() {
			return nil
		}
		return d.String()
	}, decimal.Decimal{})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// HandleValidationError answers 400 for a request that failed to bind
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// FormatValidationErrors maps a binding error to the error envelope.
// Malformed JSON becomes ERR_INVALID_JSON, rule violations ERR_VALIDATION
// with one detail per field, anything else ERR_BAD_REQUEST.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		fieldErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Request body is not valid JSON", requestID)
	case errors.As(err, &fieldErrs):
		details := make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: ruleMessage(fe)})
		}
		return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
	}
	return dto.NewErrorResponse(dto.ErrCodeBadRequest, err.Error(), requestID)
}

var ruleMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Invalid UUID format",
	"oneof":    "Must be one of: %s",
	"gt":       "Must be greater than %s",
	"gte":      "Must be greater than or equal to %s",
	"len":      "Must be exactly %s characters",
	"dive":     "Invalid list element",
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		msg := "Must be " + bound + " " + fe.Param()
		if fe.Kind() == reflect.String {
			msg += " characters"
		} else if fe.Kind() == reflect.Slice {
			msg += " items"
		}
		return msg
	}
	tmpl, ok := ruleMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	if strings.Contains(tmpl, "%s") {
		return strings.Replace(tmpl, "%s", fe.Param(), 1)
	}
	return tmpl
}
