// Package validation checks answers submitted from outside the process (web
// form, JSON API, command line flags) before they reach an entry controller.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

// MaxAnswerLength bounds a single answer, in characters
const MaxAnswerLength = 200

// Field error codes
const (
	CodeUnknownWord       = "UNKNOWN_WORD"
	CodeMaxLength         = "MAX_LENGTH_VIOLATION"
	CodeInvalidCharacters = "INVALID_CHARACTERS"
)

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (result *ValidationResult) add(field, code, message string) {
	result.Valid = false
	result.Errors = append(result.Errors, ValidationError{Field: field, Code: code, Message: message})
}

// ValidateAnswers checks every submitted value against the template's
// declared blanks. Blank values are fine here; completeness is the entry
// controller's concern.
func ValidateAnswers(t *models.Template, answers models.AnswerSet) *ValidationResult {
	result := &ValidationResult{Valid: true}

	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		value := answers[id]
		if _, ok := t.Slot(id); !ok {
			result.add(id, CodeUnknownWord, fmt.Sprintf("template %q has no word %q", t.ID, id))
			continue
		}
		if err := ValidateAnswer(value); err != nil {
			code := CodeInvalidCharacters
			if utf8.RuneCountInString(value) > MaxAnswerLength {
				code = CodeMaxLength
			}
			result.add(id, code, err.Error())
		}
	}
	return result
}

// ValidateAnswer checks one value for length and control characters.
// Newlines and tabs are allowed.
func ValidateAnswer(value string) error {
	if n := utf8.RuneCountInString(value); n > MaxAnswerLength {
		return fmt.Errorf("answer too long (%d characters, max %d)", n, MaxAnswerLength)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("answer is not valid UTF-8")
	}
	for _, r := range value {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("answer contains control character %U", r)
		}
	}
	return nil
}

// ToAppError converts validation result to AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.NewAppError(errors.ErrCodeInvalidInput, "Validation failed")
	}

	// Use the first error as the primary error
	appErr := errors.NewAppError(errors.ErrCodeInvalidInput, result.Errors[0].Message)

	var details []string
	for _, e := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	appErr.WithDetails(strings.Join(details, "; "))
	appErr.WithContext("validation_errors", result.Errors)
	return appErr
}

// Messages returns the error messages in field order
func (result *ValidationResult) Messages() []string {
	out := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		out[i] = e.Message
	}
	return out
}
