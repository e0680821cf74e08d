// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used across nsms. Messaging codes
//              classify why an inbound SMS could not be turned into a
//              command; the remaining codes cover storage, configuration
//              and transport failures.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package error

import "net/http"

// Code classifies an error.
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Storage
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeDuplicateEntry Code = "DUPLICATE_ENTRY"

	// Messaging
	CodeUnknownKeyword  Code = "UNKNOWN_KEYWORD"
	CodeMissingField    Code = "MISSING_FIELD"
	CodeInvalidField    Code = "INVALID_FIELD"
	CodeTrailingContent Code = "TRAILING_CONTENT"
	CodeUnknownBackend  Code = "UNKNOWN_BACKEND"
	CodeDeliveryFailed  Code = "DELIVERY_FAILED"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidFormat    Code = "INVALID_FORMAT"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid reports whether c is one of the codes defined above.
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeDatabaseError, CodeDuplicateEntry,
		CodeUnknownKeyword, CodeMissingField, CodeInvalidField, CodeTrailingContent,
		CodeUnknownBackend, CodeDeliveryFailed,
		CodeConfigError, CodeInvalidConfig,
		CodeValidationFailed, CodeInvalidFormat:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeDuplicateEntry:
		return "storage"
	case CodeUnknownKeyword, CodeMissingField, CodeInvalidField, CodeTrailingContent:
		return "command"
	case CodeUnknownBackend, CodeDeliveryFailed:
		return "delivery"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeInvalidFormat:
		return "validation"
	default:
		return "generic"
	}
}

// IsUserFacing reports whether errors with this code are answered with a
// reply to the sender instead of being treated as a system failure.
func (c Code) IsUserFacing() bool {
	return c.Category() == "command"
}

// HTTPStatus returns the HTTP status used when the error reaches an API client.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeUnknownBackend:
		return http.StatusNotFound
	case CodeInvalidInput, CodeValidationFailed, CodeInvalidFormat,
		CodeUnknownKeyword, CodeMissingField, CodeInvalidField, CodeTrailingContent:
		return http.StatusBadRequest
	case CodeDuplicateEntry:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeDatabaseError:
		return http.StatusServiceUnavailable
	case CodeDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
