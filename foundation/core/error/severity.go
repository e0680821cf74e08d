// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to choose the log level of an error and
//              to decide whether an operator needs to look at it.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers malformed SMS input and other sender mistakes.
	SeverityLow Severity = iota

	// SeverityMedium covers failures with a workaround, such as a message
	// that can be retried.
	SeverityMedium

	// SeverityHigh covers storage and configuration failures.
	SeverityHigh

	// SeverityCritical means the service cannot process messages at all.
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the default severity for a code.
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeDatabaseError, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh
	case CodeDeliveryFailed, CodeTimeout, CodeInternal:
		return SeverityMedium
	case CodeUnknownKeyword, CodeMissingField, CodeInvalidField, CodeTrailingContent,
		CodeUnknownBackend, CodeInvalidInput, CodeNotFound, CodeDuplicateEntry,
		CodeValidationFailed, CodeInvalidFormat:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
