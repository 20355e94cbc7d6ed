package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-madlibs/internal/entry"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/validation"
)

// EntryForm is one text input per blank of a template, kept in step with an
// entry controller
type EntryForm struct {
	ctrl        *entry.Controller
	slots       []models.WordSlot
	inputs      []textinput.Model
	focused     int
	showExample bool
	missing     map[string]bool // blanks flagged by the last failed submit
}

// NewEntryForm builds inputs for every blank, filled with the controller's
// current answers
func NewEntryForm(ctrl *entry.Controller) *EntryForm {
	t := ctrl.Template()
	f := &EntryForm{
		ctrl:    ctrl,
		slots:   t.Words,
		inputs:  make([]textinput.Model, len(t.Words)),
		missing: make(map[string]bool),
	}
	for i, w := range t.Words {
		in := textinput.New()
		in.Placeholder = w.Prompt()
		in.CharLimit = validation.MaxAnswerLength
		in.Width = 40
		in.SetValue(ctrl.Answer(w.ID))
		f.inputs[i] = in
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Update handles form updates
func (f *EntryForm) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.nextField()
			return nil
		case "shift+tab", "up":
			f.prevField()
			return nil
		case "ctrl+e":
			f.showExample = !f.showExample
			return nil
		}
	}

	if len(f.inputs) == 0 {
		return nil
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	slot := f.slots[f.focused]
	f.ctrl.SetAnswer(slot.ID, f.inputs[f.focused].Value())
	if strings.TrimSpace(f.inputs[f.focused].Value()) != "" {
		delete(f.missing, slot.ID)
	}
	return cmd
}

func (f *EntryForm) nextField() {
	f.focus((f.focused + 1) % max(len(f.inputs), 1))
}

func (f *EntryForm) prevField() {
	n := max(len(f.inputs), 1)
	f.focus((f.focused - 1 + n) % n)
}

func (f *EntryForm) focus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focused].Blur()
	f.focused = i
	f.inputs[f.focused].Focus()
}

// Focused returns the blank under the cursor
func (f *EntryForm) Focused() (models.WordSlot, bool) {
	if len(f.slots) == 0 {
		return models.WordSlot{}, false
	}
	return f.slots[f.focused], true
}

// Submit saves through the controller. On failure the missing blanks are
// flagged and the cursor moves to the first of them.
func (f *EntryForm) Submit() error {
	err := f.ctrl.Submit()
	if err == nil {
		f.missing = make(map[string]bool)
		return nil
	}

	missing := f.ctrl.Missing()
	f.missing = make(map[string]bool, len(missing))
	for _, w := range missing {
		f.missing[w.ID] = true
	}
	if len(missing) > 0 {
		for i, w := range f.slots {
			if w.ID == missing[0].ID {
				f.focus(i)
				break
			}
		}
	}
	return err
}

// Clear empties every input after the controller dropped its answers
func (f *EntryForm) Clear() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.missing = make(map[string]bool)
	f.focus(0)
}

// Controller returns the controller backing the form
func (f *EntryForm) Controller() *entry.Controller {
	return f.ctrl
}

// View renders the inputs with their labels
func (f *EntryForm) View() string {
	var hint string
	if slot, ok := f.Focused(); ok && f.showExample {
		hint = slot.Example
	}

	var b strings.Builder
	for i, w := range f.slots {
		label := StyleFormLabel.Render(fmt.Sprintf("%d. %s", i+1, w.Label))
		if f.missing[w.ID] {
			label += " " + StyleMissing.Render("(required)")
		}
		if i == f.focused {
			label = lipgloss.NewStyle().Foreground(ColorPrimary).Render("▶ ") + label
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n")
		b.WriteString("  " + f.inputs[i].View() + "\n")
		if i == f.focused && hint != "" {
			b.WriteString(StyleFormHint.Render("e.g. "+hint) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
