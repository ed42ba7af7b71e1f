// Package errors provides a lightweight structured error type (ConvertError)
// for category-based classification across the ingestion pipeline and CLI.
package errors

import "fmt"

// ErrorCategory represents the category of a converter error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig ErrorCategory = "config"
	CategoryIO     ErrorCategory = "io"

	// Ingestion errors
	CategorySchema  ErrorCategory = "schema"  // input violates the assumed Doxygen schema
	CategoryResolve ErrorCategory = "resolve" // identifier absent from the registry

	// Output errors
	CategoryRender ErrorCategory = "render"
	CategorySearch ErrorCategory = "search"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for ConvertError.
type ContextFields map[string]any

// ConvertError is a structured error with category, severity and context.
type ConvertError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *ConvertError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping.
func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ConvertError) WithContext(key string, value any) *ConvertError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ConvertError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *ConvertError {
	return &ConvertError{Category: category, Severity: severity, Message: message}
}

// Fatal creates a new fatal ConvertError. The ingestion engine trusts the
// producer's schema; everything it cannot make sense of is fatal.
func Fatal(category ErrorCategory, message string) *ConvertError {
	return &ConvertError{Category: category, Severity: SeverityFatal, Message: message}
}

// Wrap creates a new ConvertError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ConvertError {
	return &ConvertError{Category: category, Severity: severity, Message: message, Cause: err}
}

// WrapFatal wraps an existing error as a fatal ConvertError.
func WrapFatal(err error, category ErrorCategory, message string) *ConvertError {
	return &ConvertError{Category: category, Severity: SeverityFatal, Message: message, Cause: err}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	if ce, ok := err.(*ConvertError); ok {
		return ce.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns
// CategoryInternal if the error is not a ConvertError.
func GetCategory(err error) ErrorCategory {
	if ce, ok := err.(*ConvertError); ok {
		return ce.Category
	}
	return CategoryInternal
}
