package models

import (
	"regexp"
	"strings"
)

// Template represents a story skeleton with named blanks
type Template struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Words       []WordSlot `json:"expectedWords" yaml:"words"`
	Body        string     `json:"template" yaml:"-"` // Story text with {{slot}} placeholders

	// Source is where the template was loaded from (embedded, a file path)
	Source string `json:"-" yaml:"-"`
}

// WordSlot represents one blank the player has to fill
type WordSlot struct {
	ID      string `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"` // Word category, e.g. "noun"
	Label   string `json:"label" yaml:"label"`
	Example string `json:"example,omitempty" yaml:"example,omitempty"`
}

// PlaceholderPattern matches a {{slotId}} token in a template body.
var PlaceholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_-]+)\}\}`)

// Placeholder returns the token that marks a slot in a template body.
func Placeholder(slotID string) string {
	return "{{" + slotID + "}}"
}

// Slot returns the declared slot with the given id.
func (t *Template) Slot(id string) (WordSlot, bool) {
	for _, w := range t.Words {
		if w.ID == id {
			return w, true
		}
	}
	return WordSlot{}, false
}

// SlotIDs returns the declared slot ids in declaration order.
func (t *Template) SlotIDs() []string {
	ids := make([]string, len(t.Words))
	for i, w := range t.Words {
		ids[i] = w.ID
	}
	return ids
}

// ReferencedSlots returns the distinct placeholder ids used in the body, in
// order of first appearance.
func (t *Template) ReferencedSlots() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range PlaceholderPattern.FindAllStringSubmatch(t.Body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	return ids
}

// Prompt is the input placeholder shown for a slot.
func (w WordSlot) Prompt() string {
	return "Enter a " + strings.ToLower(w.Label)
}

// TemplateSummary is a template as shown in listings, with its play status
type TemplateSummary struct {
	*Template
	Completed bool `json:"completed"`
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (s TemplateSummary) FilterValue() string {
	return cleanString(s.Name + " " + s.Template.Description)
}

// Title satisfies the list.Item interface
func (s TemplateSummary) Title() string {
	title := cleanString(s.Name)
	if title == "" {
		title = cleanString(s.ID)
	}
	if s.Completed {
		title += " ✓ Done"
	}
	return title
}

// Description satisfies the list.Item interface
func (s TemplateSummary) Description() string {
	desc := cleanString(s.Template.Description)
	// Leave room for the list indicator and margins
	const maxLength = 100
	if runes := []rune(desc); len(runes) > maxLength {
		desc = string(runes[:maxLength-3]) + "..."
	}
	return desc
}

// cleanString removes characters that would break single-line rendering
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
