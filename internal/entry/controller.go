// Package entry manages the in-progress answers for one template: filling
// slots, checking completeness, submitting and the confirmed reset.
package entry

import (
	"strings"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

// Templates resolves template ids
type Templates interface {
	Get(id string) (*models.Template, error)
}

// Store persists answer sets. Implementations swallow their own failures.
type Store interface {
	Save(templateID string, answers models.AnswerSet)
	Load(templateID string) (models.AnswerSet, bool)
	Delete(templateID string)
}

// State is where a template stands for the current player
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	default:
		return "not started"
	}
}

// Controller owns the in-memory answer set for one template until it is
// submitted or discarded. It is not safe for concurrent use.
type Controller struct {
	template *models.Template
	store    Store

	answers models.AnswerSet
	saved   models.AnswerSet // last persisted record, nil when none

	resetRequested bool
}

// New starts an entry session for templateID. Saved answers are used as the
// starting state; otherwise every declared slot starts empty. An unknown id
// fails with TemplateNotFound before the store is touched.
func New(templates Templates, store Store, templateID string) (*Controller, error) {
	t, err := templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		template: t,
		store:    store,
		answers:  models.BlankAnswers(t),
	}

	if saved, ok := store.Load(t.ID); ok {
		c.saved = saved.Clone()
		for k, v := range saved {
			c.answers[k] = v
		}
	}

	return c, nil
}

// Template returns the template being filled
func (c *Controller) Template() *models.Template {
	return c.template
}

// SetAnswer updates one slot. Values are not checked until Submit.
func (c *Controller) SetAnswer(slotID, value string) {
	c.answers[slotID] = value
}

// Answer returns the current value for one slot
func (c *Controller) Answer(slotID string) string {
	return c.answers[slotID]
}

// Answers returns a copy of the current answer set
func (c *Controller) Answers() models.AnswerSet {
	return c.answers.Clone()
}

// IsComplete reports whether every declared slot has a non-blank value
func (c *Controller) IsComplete() bool {
	return c.answers.CompleteFor(c.template)
}

// Missing returns the slots still blank, in declaration order
func (c *Controller) Missing() []models.WordSlot {
	return c.answers.Missing(c.template)
}

// Submit persists the answers. An incomplete set fails with a validation
// error and nothing is written.
func (c *Controller) Submit() error {
	missing := c.Missing()
	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, w := range missing {
			labels[i] = w.Label
		}
		return apperrors.ValidationError("Please fill in all the words before reading your story").
			WithDetails("missing: "+strings.Join(labels, ", ")).
			WithContext("template_id", c.template.ID)
	}

	c.store.Save(c.template.ID, c.answers.Clone())
	c.saved = c.answers.Clone()
	return nil
}

// RequestReset arms a reset. Nothing changes until ConfirmReset.
func (c *Controller) RequestReset() {
	c.resetRequested = true
}

// CancelReset disarms a pending reset
func (c *Controller) CancelReset() {
	c.resetRequested = false
}

// ResetPending reports whether a reset is waiting for confirmation
func (c *Controller) ResetPending() bool {
	return c.resetRequested
}

// ConfirmReset deletes the saved record and clears every slot. It fails
// with ConfirmationRequired unless RequestReset was called first.
func (c *Controller) ConfirmReset() error {
	if !c.resetRequested {
		return apperrors.ConfirmationRequiredError("reset").
			WithContext("template_id", c.template.ID)
	}

	c.store.Delete(c.template.ID)
	c.saved = nil
	c.answers = models.BlankAnswers(c.template)
	c.resetRequested = false
	return nil
}

// State derives the play state from the saved record and the current answers
func (c *Controller) State() State {
	if c.saved != nil && c.saved.Equal(c.answers) {
		return Completed
	}
	if c.saved != nil || c.answers.HasAny() {
		return InProgress
	}
	return NotStarted
}
