package dto

import "net/http"

// Error codes returned by the API. Domain error codes pass through untouched;
// these cover transport-level failures.
const (
	ErrCodeInternal     = "INTERNAL"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP status
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	"UNAUTHORIZED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,

	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,
	"USERNAME_TAKEN": http.StatusConflict,

	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,

	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"INSUFFICIENT_FUNDS": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown codes map
// to 400: domain validation errors carry ad hoc codes and are client faults.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}
