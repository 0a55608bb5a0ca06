package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	ErrNotFound         = errors.New("not found")
	ErrUnsupportedGene  = errors.New("unsupported gene")
	ErrUnsupportedDrug  = errors.New("unsupported drug")
	ErrEmptyDrugList    = errors.New("at least one drug is required")
	ErrTooManyDrugs     = errors.New("too many drugs requested")
	ErrEmptyInput       = errors.New("variant file content is empty")
	ErrInputTooLarge    = errors.New("variant file exceeds size limit")
	ErrInvalidReference = errors.New("invalid reference table")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeAnalysis       = "ANALYSIS_ERROR"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeTimeout        = "REQUEST_TIMEOUT"
	ErrCodePayloadTooBig  = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel behind the validation failure.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// WrapValidationError creates a ValidationError that unwraps to err.
func WrapValidationError(field string, value interface{}, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: err.Error(),
		Value:   value,
		Err:     err,
	}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
