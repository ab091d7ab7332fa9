package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes raised by the posting core. Callers match on Code rather than
// message text; the HTTP layer maps these to status codes.
const (
	ErrCodeUnbalanced        = "UNBALANCED"
	ErrCodeEmptyVoucher      = "EMPTY_VOUCHER"
	ErrCodeInvalidAccount    = "INVALID_ACCOUNT"
	ErrCodeDuplicateCode     = "DUPLICATE_CODE"
	ErrCodeInvalidHierarchy  = "INVALID_HIERARCHY"
	ErrCodeAccountInUse      = "ACCOUNT_IN_USE"
	ErrCodeNegativeInventory = "NEGATIVE_INVENTORY"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeAlreadyReversed   = "ALREADY_REVERSED"
	ErrCodeNotPosted         = "NOT_POSTED"
)

// ErrorCode extracts the domain error code from err, or empty string if err
// is not a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
