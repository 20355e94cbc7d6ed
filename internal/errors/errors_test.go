package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeByCode(t *testing.T) {
	cases := []struct {
		err      *AppError
		category ErrorCategory
		severity ErrorSeverity
	}{
		{TemplateNotFoundError("t1"), CategoryTemplate, SeverityInfo},
		{ValidationError("blank"), CategoryValidation, SeverityWarning},
		{IncompleteError("t1", []string{"w1"}), CategoryValidation, SeverityWarning},
		{StorageError("save", stderrors.New("disk")), CategoryStorage, SeverityError},
		{InternalError("boom"), CategorySystem, SeverityCritical},
		{NewAppError(ErrCodeNoSavedAnswers, "nothing saved"), CategoryStorage, SeverityInfo},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.category, tc.err.Category, tc.err.Code)
		assert.Equal(t, tc.severity, tc.err.Severity, tc.err.Code)
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("open entry form: %w", TemplateNotFoundError("missing"))

	assert.True(t, IsCode(err, ErrCodeTemplateNotFound))
	assert.False(t, IsCode(err, ErrCodeValidation))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeTemplateNotFound))
	assert.True(t, IsAppError(err))
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := stderrors.New("read-only file system")
	err := StorageError("save", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE_FAILURE")
}

func TestIncompleteErrorListsMissing(t *testing.T) {
	err := IncompleteError("t1", []string{"noun", "verb"})
	assert.Equal(t, "missing: noun, verb", err.Details)
	assert.Equal(t, "t1", err.Context["template_id"])
}

func TestGetAppErrorConvertsPlainErrors(t *testing.T) {
	appErr := GetAppError(stderrors.New("plain"))
	assert.Equal(t, ErrCodeInternalError, appErr.Code)
	assert.NotNil(t, appErr.Cause)
}

func TestWriteHTTPError(t *testing.T) {
	h := NewHTTPErrorHandler(true, nil)

	cases := map[*AppError]int{
		TemplateNotFoundError("nope"):            http.StatusNotFound,
		NewAppError(ErrCodeNoSavedAnswers, "x"):  http.StatusNotFound,
		ValidationError("blank"):                 http.StatusBadRequest,
		IncompleteError("t1", nil):               http.StatusConflict,
		ConfirmationRequiredError("reset"):       http.StatusPreconditionFailed,
		InvalidTemplateError("t1", "bad"):        http.StatusUnprocessableEntity,
		StorageError("save", stderrors.New("x")): http.StatusInternalServerError,
	}

	for appErr, status := range cases {
		rec := httptest.NewRecorder()
		h.WriteHTTPError(rec, appErr)
		assert.Equal(t, status, rec.Code, appErr.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), string(appErr.Code))
	}
}

func TestCLIFormatBySeverity(t *testing.T) {
	h := NewCLIErrorHandler(false, nil)

	out := h.FormatError(TemplateNotFoundError("t9"))
	require.True(t, strings.HasPrefix(out, "ℹ️  INFO:"), out)

	out = h.FormatError(ValidationError("fill every blank"))
	assert.Equal(t, "⚠️  WARNING: fill every blank", out)

	verbose := NewCLIErrorHandler(true, nil)
	out = verbose.FormatError(IncompleteError("t1", []string{"w1"}))
	assert.Contains(t, out, "missing: w1")
}

func TestTUIFormatDetails(t *testing.T) {
	h := NewTUIErrorHandler(true, nil)
	out := h.FormatError(InvalidTemplateError("t1", "undeclared {{x}}"))
	assert.Contains(t, out, "Details: undeclared {{x}}")

	icon, color := h.GetErrorStyle(TemplateNotFoundError("t1"))
	assert.Equal(t, "ℹ️", icon)
	assert.Equal(t, "#48cae4", color)
}
