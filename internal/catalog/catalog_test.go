package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const elfTemplate = `---
id: elf-strike
name: The Elf Strike
description: The elves put down their tools.
words:
  - id: food1
    type: noun
    label: Food
    example: fruitcake
  - id: verb1
    type: verb
    label: Verb
---

The elves refused to {{verb1}} until Santa stopped serving {{food1}}.
Santa served {{food1}} anyway.
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestBuiltinDataset(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, "santas-workshop", list[0].ID)
	assert.Equal(t, "reindeer-games", list[1].ID)
	assert.Equal(t, "snowman", list[2].ID)

	for _, tmpl := range list {
		assert.True(t, Validate(tmpl).OK(), tmpl.ID)
		assert.Equal(t, BuiltinSource, tmpl.Source)
	}
}

func TestGet(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	tmpl, err := c.Get("snowman")
	require.NoError(t, err)
	assert.Equal(t, "The Talking Snowman", tmpl.Name)
	require.Len(t, tmpl.Words, 4)

	_, err = c.Get("missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
}

func TestSearch(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Len(t, c.Search(""), 3)

	got := c.Search("reindeer")
	require.NotEmpty(t, got)
	assert.Equal(t, "reindeer-games", got[0].ID)

	assert.Empty(t, c.Search("zzzzqqq"))
}

func TestTemplatesDirOverridesByID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.md"), elfTemplate)
	writeFile(t, filepath.Join(dir, "snowman.md"), `---
id: snowman
name: A Different Snowman
words:
  - id: w1
    label: Noun
---
The snowman ate a {{w1}}.
`)

	c, err := New(WithTemplatesDir(dir))
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 4)
	// Overrides keep the original position
	assert.Equal(t, "snowman", list[2].ID)
	assert.Equal(t, "A Different Snowman", list[2].Name)
	assert.Equal(t, "elf-strike", list[3].ID)

	elf, err := c.Get("elf-strike")
	require.NoError(t, err)
	assert.Equal(t, "The elves refused to {{verb1}} until Santa stopped serving {{food1}}.\nSanta served {{food1}} anyway.", elf.Body)
	assert.Equal(t, filepath.Join(dir, "elf.md"), elf.Source)
	assert.Equal(t, "fruitcake", elf.Words[0].Example)
}

func TestTemplatesDirIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.md"), elfTemplate)
	writeFile(t, filepath.Join(dir, "drafts", "other.md"), strings.Replace(elfTemplate, "id: elf-strike", "id: draft", 1))
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a template")

	templates, errs := LoadDir(dir)
	assert.Empty(t, errs)
	require.Len(t, templates, 1)
	assert.Equal(t, "elf-strike", templates[0].ID)

	missing, errs := LoadDir(filepath.Join(dir, "nope"))
	assert.Nil(t, missing)
	assert.Nil(t, errs)
}

func TestInvalidTemplatesAreRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.md"), `---
id: broken
name: Broken
words:
  - id: w1
    label: Noun
---
A {{w1}} and a {{w2}}.
`)
	writeFile(t, filepath.Join(dir, "nofront.md"), "just text")

	core, logs := observer.New(zap.DebugLevel)
	c, err := New(WithoutBuiltin(), WithTemplatesDir(dir), WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, logs.FilterMessage("Rejecting invalid template").Len())
	assert.Equal(t, 1, logs.FilterMessage("Skipping template file").Len())
}

func TestDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	writeFile(t, path, `{"templates":[{"id":"t1","name":"One","description":"","expectedWords":[{"id":"w1","type":"noun","label":"Noun"}],"template":"I saw a {{w1}} today."}]}`)

	c, err := New(WithoutBuiltin(), WithDatasetFile(path))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	tmpl, err := c.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "I saw a {{w1}} today.", tmpl.Body)
}

func TestBrokenDatasetFileKeepsCurrentTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	writeFile(t, path, `{"templates":[]}`)

	c, err := New(WithDatasetFile(path))
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	writeFile(t, path, `{not json`)
	assert.Error(t, c.Reload())
	assert.Equal(t, 3, c.Len())

	_, err = New(WithDatasetFile(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, err)
}

func TestFromTemplates(t *testing.T) {
	tmpl := &models.Template{
		ID:    "t1",
		Name:  "One",
		Words: []models.WordSlot{{ID: "w1", Label: "Noun"}},
		Body:  "I saw a {{w1}} today.",
	}
	c, err := FromTemplates(tmpl)
	require.NoError(t, err)
	got, err := c.Get("t1")
	require.NoError(t, err)
	assert.Same(t, tmpl, got)

	_, err = FromTemplates(&models.Template{ID: "bad", Body: "{{nope}}"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidTemplate))
}

func TestSerializeRoundTrip(t *testing.T) {
	tmpl, err := ParseTemplateFile([]byte(elfTemplate))
	require.NoError(t, err)

	data, err := SerializeTemplateFile(tmpl)
	require.NoError(t, err)

	again, err := ParseTemplateFile(data)
	require.NoError(t, err)
	assert.Equal(t, tmpl, again)
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	c, err := New(WithoutBuiltin(), WithTemplatesDir(dir), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())

	ctx, cancel := context.WithCancel(context.Background())
	reloaded, err := c.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "elf.md"), elfTemplate)

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	assert.Equal(t, 1, c.Len())

	cancel()
	for range reloaded {
	}
}

func TestWatchWithoutSources(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	_, err = c.Watch(context.Background())
	assert.Error(t, err)
}
