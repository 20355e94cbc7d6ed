package models

import (
	"html/template"
	"strings"
)

// SegmentKind distinguishes literal story text from a substituted answer
type SegmentKind string

const (
	SegmentText   SegmentKind = "text"
	SegmentAnswer SegmentKind = "answer"
)

// Segment is one run of a rendered paragraph. Answer segments carry the
// slot id and label so a front-end can show which blank a word filled.
type Segment struct {
	Kind   SegmentKind `json:"kind"`
	Text   string      `json:"text"`
	SlotID string      `json:"slotId,omitempty"`
	Label  string      `json:"label,omitempty"`
}

// Paragraph is one line-break delimited block of a story
type Paragraph struct {
	Segments []Segment `json:"segments"`
}

// Story is a template rendered with a complete answer set
type Story struct {
	TemplateID string      `json:"templateId"`
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// AnswerSegments returns every answer segment in reading order
func (s *Story) AnswerSegments() []Segment {
	var out []Segment
	for _, p := range s.Paragraphs {
		for _, seg := range p.Segments {
			if seg.Kind == SegmentAnswer {
				out = append(out, seg)
			}
		}
	}
	return out
}

// Answers re-extracts the inserted words by slot id
func (s *Story) Answers() AnswerSet {
	answers := make(AnswerSet)
	for _, seg := range s.AnswerSegments() {
		answers[seg.SlotID] = seg.Text
	}
	return answers
}

// LabelFor returns the label of the blank a slot filled
func (s *Story) LabelFor(slotID string) (string, bool) {
	for _, seg := range s.AnswerSegments() {
		if seg.SlotID == slotID {
			return seg.Label, true
		}
	}
	return "", false
}

// Markup returns each paragraph with answers wrapped in word-replacement
// spans. Nothing is escaped; use HTML for anything shown in a browser.
func (s *Story) Markup() []string {
	out := make([]string, len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		var b strings.Builder
		for _, seg := range p.Segments {
			if seg.Kind != SegmentAnswer {
				b.WriteString(seg.Text)
				continue
			}
			b.WriteString(`<span class="word-replacement" data-word-id="`)
			b.WriteString(seg.SlotID)
			b.WriteString(`" data-word-label="`)
			b.WriteString(seg.Label)
			b.WriteString(`">`)
			b.WriteString(seg.Text)
			b.WriteString(`</span>`)
		}
		out[i] = b.String()
	}
	return out
}

// HTML returns each paragraph as escaped markup safe for a page
func (s *Story) HTML() []template.HTML {
	esc := template.HTMLEscapeString
	out := make([]template.HTML, len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		var b strings.Builder
		for _, seg := range p.Segments {
			if seg.Kind != SegmentAnswer {
				b.WriteString(esc(seg.Text))
				continue
			}
			b.WriteString(`<span class="word-replacement" data-word-id="`)
			b.WriteString(esc(seg.SlotID))
			b.WriteString(`" data-word-label="`)
			b.WriteString(esc(seg.Label))
			b.WriteString(`" title="`)
			b.WriteString(esc(seg.Label))
			b.WriteString(`">`)
			b.WriteString(esc(seg.Text))
			b.WriteString(`</span>`)
		}
		out[i] = template.HTML(b.String())
	}
	return out
}

// PlainText joins the paragraphs with newlines, answers unmarked
func (s *Story) PlainText() string {
	lines := make([]string, len(s.Paragraphs))
	for i, p := range s.Paragraphs {
		var b strings.Builder
		for _, seg := range p.Segments {
			b.WriteString(seg.Text)
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

// Markdown renders the story with a title heading and bold answers. Empty
// paragraphs are dropped since Markdown cannot represent them.
func (s *Story) Markdown() string {
	return s.MarkdownHighlight(-1)
}

// MarkdownHighlight is Markdown with the answer at index focus (reading
// order, as in AnswerSegments) set in bold italics. A negative focus
// highlights nothing.
func (s *Story) MarkdownHighlight(focus int) string {
	var b strings.Builder
	answer := 0
	if s.Title != "" {
		b.WriteString("# ")
		b.WriteString(markdownEscaper.Replace(s.Title))
		b.WriteString("\n\n")
	}

	first := true
	for _, p := range s.Paragraphs {
		if len(p.Segments) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n\n")
		}
		first = false
		for _, seg := range p.Segments {
			text := markdownEscaper.Replace(seg.Text)
			if seg.Kind == SegmentAnswer {
				mark := "**"
				if answer == focus {
					mark = "***"
				}
				answer++
				// Collapse whitespace: a multi-line answer stays in its paragraph
				if words := strings.Fields(text); len(words) > 0 {
					text = mark + strings.Join(words, " ") + mark
				}
			}
			b.WriteString(text)
		}
	}
	b.WriteString("\n")
	return b.String()
}
