// Package errors provides unified error handling across pocket-madlibs.
//
// SYSTEM ARCHITECTURE ROLE:
// Every front-end (CLI, web server, TUI) surfaces failures from the same core
// (catalog, entry controller, renderer). This package gives those failures a
// single shape so each interface can present them its own way.
//
// KEY RESPONSIBILITIES:
// - Define the error codes of the game: missing template, incomplete answers,
//   blocked submission, pending confirmation, bad template data, storage
// - Carry severity and category so handlers can format without switching on text
// - Preserve the underlying cause for errors.Is / errors.As
//
// INTEGRATION POINTS:
// - internal/catalog: TemplateNotFoundError, InvalidTemplateError
// - internal/entry: ValidationError, ConfirmationRequiredError
// - internal/renderer: IncompleteError
// - internal/storage: StorageError (logged, never returned past the Answer Store)
// - internal/cli, internal/server, internal/ui: handlers.go formatters
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeIncompleteAnswers ErrorCode = "INCOMPLETE_ANSWERS"
	ErrCodeConfirmation      ErrorCode = "CONFIRMATION_REQUIRED"

	// Resource errors
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeInvalidTemplate  ErrorCode = "INVALID_TEMPLATE"
	ErrCodeNoSavedAnswers   ErrorCode = "NO_SAVED_ANSWERS"

	// Storage errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeFileCorrupted  ErrorCode = "FILE_CORRUPTED"

	// Command errors
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryTemplate   ErrorCategory = "template"
	CategoryStorage    ErrorCategory = "storage"
	CategoryCommand    ErrorCategory = "command"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeIncompleteAnswers, ErrCodeConfirmation:
		return CategoryValidation, SeverityWarning

	case ErrCodeTemplateNotFound:
		return CategoryTemplate, SeverityInfo
	case ErrCodeInvalidTemplate:
		return CategoryTemplate, SeverityError

	case ErrCodeStorageFailure, ErrCodeFileCorrupted:
		return CategoryStorage, SeverityError
	case ErrCodeNoSavedAnswers:
		return CategoryStorage, SeverityInfo

	case ErrCodeInvalidCommand:
		return CategoryCommand, SeverityError

	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical

	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// TemplateNotFoundError is returned when an id does not resolve to a known template.
func TemplateNotFoundError(id string) *AppError {
	return NewAppError(ErrCodeTemplateNotFound, fmt.Sprintf("template %q not found", id)).
		WithContext("template_id", id)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

// IncompleteError reports a template whose answer set is missing or has empty slots.
func IncompleteError(id string, missing []string) *AppError {
	err := NewAppError(ErrCodeIncompleteAnswers, fmt.Sprintf("answers for %q are incomplete", id)).
		WithContext("template_id", id)
	if len(missing) > 0 {
		err.WithDetails("missing: " + strings.Join(missing, ", "))
	}
	return err
}

func ConfirmationRequiredError(action string) *AppError {
	return NewAppError(ErrCodeConfirmation, fmt.Sprintf("%s requires confirmation", action))
}

func InvalidTemplateError(id string, details string) *AppError {
	return NewAppError(ErrCodeInvalidTemplate, fmt.Sprintf("template %q is invalid", id)).
		WithDetails(details)
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

func InvalidCommandError(command string, reason string) *AppError {
	return NewAppError(ErrCodeInvalidCommand, fmt.Sprintf("Invalid command '%s': %s", command, reason))
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}
