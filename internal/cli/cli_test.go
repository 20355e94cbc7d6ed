package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

// run executes one command line against dataDir and returns stdout
func run(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New(strings.NewReader(stdin), &out, &errOut)
	err := c.Run(append(args, "--data-dir", dataDir))
	return out.String(), err
}

var snowmanWords = []string{
	"--word", "clothing1=scarf",
	"--word", "vegetable1=carrot",
	"--word", "verb1=tango",
	"--word", "place1=the moon",
}

func playSnowman(t *testing.T, dir string) {
	t.Helper()
	out, err := run(t, dir, "", append([]string{"play", "snowman"}, snowmanWords...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved! Read it with: pocket-madlibs read snowman")
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "pocket-madlibs version "+Version+"\n", out)
}

func TestListTable(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "santas-workshop")
	assert.Contains(t, out, "The Talking Snowman")
	assert.NotContains(t, out, "✓ Done")

	// First run writes the default config into the data dir
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)

	playSnowman(t, dir)
	out, err = run(t, dir, "", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Done")
}

func TestListJSON(t *testing.T) {
	dir := t.TempDir()
	playSnowman(t, dir)

	out, err := run(t, dir, "", "list", "--format", "json")
	require.NoError(t, err)

	var summaries []models.TemplateSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 3)
	assert.Equal(t, "snowman", summaries[2].ID)
	assert.True(t, summaries[2].Completed)
	assert.False(t, summaries[0].Completed)

	_, err = run(t, dir, "", "list", "--format", "yaml")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "", "search", "reindeer")
	require.NoError(t, err)
	assert.Contains(t, out, "reindeer-games")
	assert.NotContains(t, out, "snowman")

	out, err = run(t, dir, "", "search", "zzzzqqq")
	require.NoError(t, err)
	assert.Equal(t, "No stories found\n", out)
}

func TestShow(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "", "show", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "The Talking Snowman (snowman)")
	assert.Contains(t, out, "Status: not started")
	assert.Contains(t, out, "Article of Clothing")

	_, err = run(t, dir, "", "show", "nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
}

func TestShowTemplateFormatRoundTrips(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "", "show", "snowman", "--format", "template")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "---\nid: snowman\n"))
	assert.Contains(t, out, "{{clothing1}}")

	// The export is a valid templates dir file; a same-id copy overrides
	custom := strings.Replace(out, "name: The Talking Snowman", "name: My Snowman", 1)
	tmpl := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(tmpl, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "snowman.md"), []byte(custom), 0o644))

	out, err = run(t, dir, "", "show", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "My Snowman (snowman)")

	_, err = run(t, dir, "", "show", "snowman", "--format", "yaml")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestPlayAndRead(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "read", "snowman")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeIncompleteAnswers))

	playSnowman(t, dir)

	out, err := run(t, dir, "", "read", "snowman")
	require.NoError(t, err)
	assert.Equal(t,
		"We built a snowman and gave him a scarf and a carrot for a nose.\n"+
			"That night he opened his eyes and announced that he wanted to tango at the moon.\n",
		out)

	out, err = run(t, dir, "", "read", "snowman", "--format", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# The Talking Snowman\n\n"))
	assert.Contains(t, out, "**scarf**")

	out, err = run(t, dir, "", "read", "snowman", "-f", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `data-word-id="clothing1"`)

	_, err = run(t, dir, "", "read", "snowman", "--format", "pdf")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestReadIncompleteShowsHint(t *testing.T) {
	var errOut bytes.Buffer
	c := New(strings.NewReader(""), &bytes.Buffer{}, &errOut)
	err := c.Run([]string{"read", "snowman", "--data-dir", t.TempDir()})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeIncompleteAnswers))

	c.printError(err)
	assert.Contains(t, errOut.String(), `answers for "snowman" are incomplete`)
	assert.Contains(t, errOut.String(), "fill it in first with: pocket-madlibs play snowman -i")
}

func TestPlayIncompleteSavesNothing(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "play", "snowman", "--word", "clothing1=scarf")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	assert.Contains(t, out, "Still missing:")
	assert.Contains(t, out, "vegetable1")
	assert.NotContains(t, out, "clothing1")

	out, err = run(t, dir, "", "show", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: not started")
}

func TestPlayRejectsBadWords(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "play", "snowman", "--word", "nonsense")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	_, err = run(t, dir, "", "play", "snowman", "--word", "hat=top")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	_, err = run(t, dir, "", "play", "nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
}

func TestPlayInteractive(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "carrot\ntango\nthe moon\n",
		"play", "snowman", "-i", "--word", "clothing1=scarf")
	require.NoError(t, err)
	assert.Contains(t, out, "Vegetable (e.g. turnip): ")
	assert.NotContains(t, out, "Article of Clothing")

	out, err = run(t, dir, "", "read", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "wanted to tango at the moon")
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	playSnowman(t, dir)

	out, err := run(t, dir, "n\n", "reset", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "[y/N]")
	assert.Contains(t, out, "Reset cancelled")

	_, err = run(t, dir, "", "read", "snowman")
	require.NoError(t, err, "answers survive a cancelled reset")

	out, err = run(t, dir, "y\n", "reset", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	_, err = run(t, dir, "", "read", "snowman")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeIncompleteAnswers))

	playSnowman(t, dir)
	_, err = run(t, dir, "", "reset", "snowman", "--yes")
	require.NoError(t, err)
	out, err = run(t, dir, "", "show", "snowman")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: not started")
}

func TestSQLiteBackendPersists(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "", append([]string{"play", "snowman", "--backend", "sqlite"}, snowmanWords...)...)
	require.NoError(t, err)

	out, err := run(t, dir, "", "list", "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Done")

	out, err = run(t, dir, "", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "✓ Done", "file backend has its own answers")
}

func TestExtraTemplatesDir(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(tmpl, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "elf.md"), []byte(`---
id: elf-strike
name: The Elf Strike
words:
  - id: food1
    label: Food
---
The elves refused to work without {{food1}}.
`), 0o644))

	out, err := run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "elf-strike")

	_, err = run(t, dir, "", "play", "elf-strike", "--word", "food1=cocoa")
	require.NoError(t, err)
	out, err = run(t, dir, "", "read", "elf-strike")
	require.NoError(t, err)
	assert.Equal(t, "The elves refused to work without cocoa.\n", out)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ snowman [builtin]")
	assert.Contains(t, out, "3 templates, 0 errors, 0 warnings")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"templates":[{"id":"x","name":"X","expectedWords":[],"template":"{{oops}}"}]}`), 0o644))
	out, err = run(t, dir, "", "validate", bad)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidTemplate))
	assert.Contains(t, out, "✗ x")
	assert.Contains(t, out, "placeholder {{oops}} is not a declared word")
}

func TestPrintErrorFormats(t *testing.T) {
	var errOut bytes.Buffer
	c := New(strings.NewReader(""), &bytes.Buffer{}, &errOut)
	c.printError(apperrors.TemplateNotFoundError("nope"))
	assert.Contains(t, errOut.String(), `template "nope" not found`)

	errOut.Reset()
	err := c.Run([]string{"bogus-command", "--data-dir", t.TempDir()})
	require.Error(t, err)
	c.printError(err)
	assert.Contains(t, errOut.String(), "❌ ERROR: unknown command")
}
