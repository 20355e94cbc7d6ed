package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

// Output formats accepted by Format
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats lists the output formats in help order
var Formats = []string{FormatText, FormatMarkdown, FormatHTML, FormatJSON}

// Render substitutes the answers into the template body and splits the
// result into paragraphs. ok is false when no saved answers exist. A nil
// template is TemplateNotFound; missing or blank answers are
// IncompleteAnswers.
func Render(t *models.Template, answers models.AnswerSet, ok bool) (*models.Story, error) {
	if t == nil {
		return nil, apperrors.TemplateNotFoundError("")
	}
	if !ok {
		return nil, apperrors.IncompleteError(t.ID, t.SlotIDs())
	}
	if missing := answers.Missing(t); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, w := range missing {
			ids[i] = w.ID
		}
		return nil, apperrors.IncompleteError(t.ID, ids)
	}

	b := &storyBuilder{story: &models.Story{TemplateID: t.ID, Title: t.Name}}

	// Single pass over the body so answer text is never scanned again
	last := 0
	for _, m := range models.PlaceholderPattern.FindAllStringSubmatchIndex(t.Body, -1) {
		slot, declared := t.Slot(t.Body[m[2]:m[3]])
		if !declared {
			continue
		}
		b.text(t.Body[last:m[0]])
		b.answer(slot, answers[slot.ID])
		last = m[1]
	}
	b.text(t.Body[last:])

	return b.finish(), nil
}

// storyBuilder accumulates segments and breaks paragraphs on newlines in
// literal text
type storyBuilder struct {
	story   *models.Story
	current []models.Segment
}

func (b *storyBuilder) text(s string) {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i > 0 {
			b.breakParagraph()
		}
		if i < len(lines)-1 {
			line = strings.TrimSuffix(line, "\r")
		}
		if line == "" {
			continue
		}
		if n := len(b.current); n > 0 && b.current[n-1].Kind == models.SegmentText {
			b.current[n-1].Text += line
			continue
		}
		b.current = append(b.current, models.Segment{Kind: models.SegmentText, Text: line})
	}
}

func (b *storyBuilder) answer(slot models.WordSlot, value string) {
	b.current = append(b.current, models.Segment{
		Kind:   models.SegmentAnswer,
		Text:   value,
		SlotID: slot.ID,
		Label:  slot.Label,
	})
}

func (b *storyBuilder) breakParagraph() {
	segments := b.current
	if segments == nil {
		segments = []models.Segment{}
	}
	b.story.Paragraphs = append(b.story.Paragraphs, models.Paragraph{Segments: segments})
	b.current = nil
}

func (b *storyBuilder) finish() *models.Story {
	b.breakParagraph()
	return b.story
}

// Format renders a story in one of the named output formats
func Format(story *models.Story, format string) (string, error) {
	switch format {
	case "", FormatText:
		return story.PlainText() + "\n", nil
	case FormatMarkdown:
		return story.Markdown(), nil
	case FormatHTML:
		var b strings.Builder
		for _, p := range story.HTML() {
			b.WriteString("<p>")
			b.WriteString(string(p))
			b.WriteString("</p>\n")
		}
		return b.String(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(story, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal story: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", apperrors.NewAppError(apperrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown format %q (want %s)", format, strings.Join(Formats, ", ")))
	}
}
