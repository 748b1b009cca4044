package validation

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

// Common validation regex patterns
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// phoneRegex accepts E.164-ish numbers: optional +, 7 to 15 digits.
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MinLength validates minimum string length
func (v *Validator) MinLength(field, value string, min int) *Validator {
	if len(value) < min {
		v.errors.Add(field, "Must be at least "+strconv.Itoa(min)+" characters")
	}
	return v
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Phone validates a phone number. Empty values pass; pair with Required when
// the field is mandatory.
func (v *Validator) Phone(field, value string) *Validator {
	if value != "" && !phoneRegex.MatchString(value) {
		v.errors.Add(field, "Must be a valid phone number")
	}
	return v
}

// UUID validates UUID format
func (v *Validator) UUID(field, value string) *Validator {
	if value != "" && !uuidRegex.MatchString(value) {
		v.errors.Add(field, "Must be a valid UUID")
	}
	return v
}

// Min validates minimum integer value
func (v *Validator) Min(field string, value, min int) *Validator {
	if value < min {
		v.errors.Add(field, "Must be at least "+strconv.Itoa(min))
	}
	return v
}

// OneOf validates value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v // Empty is handled by Required
	}

	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes JSON request body and runs basic validation
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	return &req, nil
}

// ParseStringQueryParam safely parses a string query parameter
func ParseStringQueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}
