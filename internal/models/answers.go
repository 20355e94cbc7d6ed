package models

import "strings"

// AnswerSet maps slot ids to the words the player entered
type AnswerSet map[string]string

// BlankAnswers returns an answer set with every declared slot set to "".
func BlankAnswers(t *Template) AnswerSet {
	answers := make(AnswerSet, len(t.Words))
	for _, w := range t.Words {
		answers[w.ID] = ""
	}
	return answers
}

// Clone returns an independent copy of the answer set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same values.
func (a AnswerSet) Equal(other AnswerSet) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Missing returns the declared slots of t whose trimmed answer is empty,
// in declaration order.
func (a AnswerSet) Missing(t *Template) []WordSlot {
	var missing []WordSlot
	for _, w := range t.Words {
		if strings.TrimSpace(a[w.ID]) == "" {
			missing = append(missing, w)
		}
	}
	return missing
}

// CompleteFor reports whether every declared slot of t has a non-empty
// trimmed answer.
func (a AnswerSet) CompleteFor(t *Template) bool {
	return len(a.Missing(t)) == 0
}

// HasAny reports whether at least one answer is non-empty.
func (a AnswerSet) HasAny() bool {
	for _, v := range a {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
