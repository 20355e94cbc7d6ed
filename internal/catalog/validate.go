package catalog

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

var slotIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Report lists the problems found in one template. Errors make the template
// unusable; warnings are logged and the template is kept.
type Report struct {
	TemplateID string   `json:"templateId"`
	Source     string   `json:"source,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OK reports whether the template has no errors
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Err converts a failing report to an InvalidTemplate error, nil otherwise
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return apperrors.InvalidTemplateError(r.TemplateID, strings.Join(r.Errors, "; ")).
		WithContext("source", r.Source)
}

// Validate checks that every placeholder in the body is declared and that
// slot declarations are well formed.
func Validate(t *models.Template) Report {
	r := Report{TemplateID: t.ID, Source: t.Source}

	if strings.TrimSpace(t.ID) == "" {
		r.Errors = append(r.Errors, "template id is empty")
	}
	if strings.TrimSpace(t.Name) == "" {
		r.Warnings = append(r.Warnings, "template name is empty")
	}

	declared := make(map[string]bool, len(t.Words))
	for i, w := range t.Words {
		switch {
		case w.ID == "":
			r.Errors = append(r.Errors, fmt.Sprintf("word %d has an empty id", i+1))
			continue
		case !slotIDPattern.MatchString(w.ID):
			r.Errors = append(r.Errors, fmt.Sprintf("word id %q may only contain letters, digits, '-' and '_'", w.ID))
		case declared[w.ID]:
			r.Errors = append(r.Errors, fmt.Sprintf("word id %q is declared more than once", w.ID))
		}
		declared[w.ID] = true

		if strings.TrimSpace(w.Label) == "" {
			r.Warnings = append(r.Warnings, fmt.Sprintf("word %q has no label", w.ID))
		}
	}

	referenced := make(map[string]bool)
	for _, id := range t.ReferencedSlots() {
		referenced[id] = true
		if !declared[id] {
			r.Errors = append(r.Errors, fmt.Sprintf("placeholder %s is not a declared word", models.Placeholder(id)))
		}
	}

	for _, w := range t.Words {
		if w.ID != "" && !referenced[w.ID] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("word %q is never used in the story", w.ID))
		}
	}

	return r
}
