package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testStory() *Story {
	return &Story{
		TemplateID: "t",
		Title:      "Snow_Day",
		Paragraphs: []Paragraph{
			{Segments: []Segment{
				{Kind: SegmentText, Text: "A "},
				{Kind: SegmentAnswer, Text: "hat", SlotID: "w1", Label: "Noun"},
				{Kind: SegmentText, Text: " and "},
				{Kind: SegmentAnswer, Text: "<b>", SlotID: "w2", Label: "Tag"},
			}},
			{},
			{Segments: []Segment{
				{Kind: SegmentAnswer, Text: "  ", SlotID: "w3", Label: "Space"},
				{Kind: SegmentText, Text: "end"},
			}},
		},
	}
}

func TestMarkdownHighlight(t *testing.T) {
	s := testStory()

	assert.Equal(t, "# Snow\\_Day\n\nA **hat** and **\\<b\\>**\n\n  end\n", s.Markdown())
	assert.Equal(t, "# Snow\\_Day\n\nA **hat** and ***\\<b\\>***\n\n  end\n", s.MarkdownHighlight(1))
	assert.Equal(t, s.Markdown(), s.MarkdownHighlight(7))
}

func TestMarkdownKeepsMultilineAnswerInParagraph(t *testing.T) {
	s := &Story{Paragraphs: []Paragraph{{Segments: []Segment{
		{Kind: SegmentText, Text: "I saw a "},
		{Kind: SegmentAnswer, Text: "big\n\n  reindeer\t", SlotID: "w1", Label: "Noun"},
		{Kind: SegmentText, Text: " today."},
	}}}}

	assert.Equal(t, "I saw a **big reindeer** today.\n", s.Markdown())
	assert.Equal(t, "I saw a ***big reindeer*** today.\n", s.MarkdownHighlight(0))
}

func TestStoryViews(t *testing.T) {
	s := testStory()

	assert.Equal(t, "A hat and <b>\n\n  end", s.PlainText())
	assert.Equal(t, AnswerSet{"w1": "hat", "w2": "<b>", "w3": "  "}, s.Answers())

	label, ok := s.LabelFor("w2")
	assert.True(t, ok)
	assert.Equal(t, "Tag", label)
	_, ok = s.LabelFor("nope")
	assert.False(t, ok)

	markup := s.Markup()
	assert.Len(t, markup, 3)
	assert.Contains(t, markup[0], `data-word-label="Tag"><b></span>`)
	assert.Empty(t, markup[1])

	html := s.HTML()
	assert.Contains(t, string(html[0]), `title="Tag">&lt;b&gt;</span>`)
}
