package dto

import (
	"net/http"

	"github.com/retailbooks/backend/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Domain error codes pass
// through unchanged; see ErrorCodeHTTPStatus for the full mapping.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding/validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
//
// Rejections of well-formed but business-invalid requests map to 422;
// concurrent-modification and uniqueness failures map to 409; malformed
// input maps to 400.
var ErrorCodeHTTPStatus = map[string]int{
	// HTTP-layer errors
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,

	// Shared domain errors
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_STATE":        http.StatusUnprocessableEntity,

	// Posting-core business rules -> 422 Unprocessable Entity
	shared.ErrCodeUnbalanced:        http.StatusUnprocessableEntity,
	shared.ErrCodeEmptyVoucher:      http.StatusUnprocessableEntity,
	shared.ErrCodeInvalidAccount:    http.StatusUnprocessableEntity,
	shared.ErrCodeInvalidHierarchy:  http.StatusUnprocessableEntity,
	shared.ErrCodeNegativeInventory: http.StatusUnprocessableEntity,
	shared.ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.ErrCodeNotPosted:         http.StatusUnprocessableEntity,

	// Uniqueness and lifecycle conflicts -> 409 Conflict
	shared.ErrCodeDuplicateCode:   http.StatusConflict,
	shared.ErrCodeAccountInUse:    http.StatusConflict,
	shared.ErrCodeAlreadyReversed: http.StatusConflict,
	"PARTY_IN_USE":                http.StatusConflict,
	"SYSTEM_ACCOUNT":              http.StatusConflict,

	// Malformed requests -> 400 Bad Request
	"INVALID_TRANSACTION_TYPE": http.StatusBadRequest,
	"INVALID_AMOUNT":           http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
