package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-madlibs/internal/catalog"
	"github.com/dpshade/pocket-madlibs/internal/config"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cat, err := catalog.New()
	require.NoError(t, err)
	return New(cat, storage.NewAnswerStore(storage.NewMemoryKV(), nil), nil)
}

var snowmanAnswers = models.AnswerSet{
	"clothing1":  "scarf",
	"vegetable1": "carrot",
	"verb1":      "tango",
	"place1":     "the moon",
}

func TestListTemplatesMarksCompleted(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SubmitAnswers("snowman", snowmanAnswers)
	require.NoError(t, err)

	list := svc.ListTemplates()
	require.Len(t, list, 3)
	for _, s := range list {
		assert.Equal(t, s.ID == "snowman", s.Completed, s.ID)
	}
	assert.Equal(t, "The Talking Snowman ✓ Done", list[2].Title())
}

// plainKV hides the backend's key listing
type plainKV struct{ storage.KV }

func TestListTemplatesCompletionSources(t *testing.T) {
	cat, err := catalog.New()
	require.NoError(t, err)

	listing := storage.NewMemoryKV()
	require.NoError(t, listing.Set(storage.Key("reindeer-games"), "{not json"))
	backends := map[string]storage.KV{
		"listing":    listing,
		"no listing": plainKV{listing},
	}
	for name, kv := range backends {
		t.Run(name, func(t *testing.T) {
			svc := New(cat, storage.NewAnswerStore(kv, nil), nil)
			_, err := svc.SubmitAnswers("snowman", snowmanAnswers)
			require.NoError(t, err)

			completed := map[string]bool{}
			for _, s := range svc.ListTemplates() {
				completed[s.ID] = s.Completed
			}
			assert.Equal(t, map[string]bool{
				"santas-workshop": false,
				"reindeer-games":  false, // unreadable record
				"snowman":         true,
			}, completed)

			require.NoError(t, svc.Reset("snowman", true))
		})
	}
}

func TestSearchTemplates(t *testing.T) {
	svc := newTestService(t)
	got := svc.SearchTemplates("snowman")
	require.NotEmpty(t, got)
	assert.Equal(t, "snowman", got[0].ID)
}

func TestSubmitAnswersAndStory(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Story("snowman")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeIncompleteAnswers))

	_, err = svc.SubmitAnswers("snowman", models.AnswerSet{"clothing1": "scarf"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	assert.False(t, svc.IsCompleted("snowman"))

	_, err = svc.SubmitAnswers("snowman", models.AnswerSet{"hat": "top"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))

	ctrl, err := svc.SubmitAnswers("snowman", snowmanAnswers)
	require.NoError(t, err)
	assert.True(t, ctrl.IsComplete())

	story, err := svc.Story("snowman")
	require.NoError(t, err)
	assert.Equal(t, snowmanAnswers, story.Answers())
	assert.Contains(t, story.PlainText(), "gave him a scarf and a carrot")

	saved, err := svc.SavedAnswers("snowman")
	require.NoError(t, err)
	assert.Equal(t, snowmanAnswers, saved)
}

func TestUnknownTemplate(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Story("nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
	_, err = svc.NewEntry("nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
	_, err = svc.SavedAnswers("nope")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
	_, err = svc.SavedAnswers("snowman")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSavedAnswers), "known template, nothing saved")
	assert.True(t, apperrors.IsCode(svc.Reset("nope", true), apperrors.ErrCodeTemplateNotFound))
}

func TestResetNeedsConfirmation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SubmitAnswers("snowman", snowmanAnswers)
	require.NoError(t, err)

	err = svc.Reset("snowman", false)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfirmation))
	assert.True(t, svc.IsCompleted("snowman"))

	require.NoError(t, svc.Reset("snowman", true))
	assert.False(t, svc.IsCompleted("snowman"))
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{DataDir: dir, Backend: backend, TemplatesDir: t.TempDir(), Port: 8080}

			svc, err := NewFromConfig(cfg, nil)
			require.NoError(t, err)
			_, err = svc.SubmitAnswers("snowman", snowmanAnswers)
			require.NoError(t, err)
			require.NoError(t, svc.Close())

			svc, err = NewFromConfig(cfg, nil)
			require.NoError(t, err)
			defer svc.Close()
			assert.True(t, svc.IsCompleted("snowman"), "answers persist across restarts")
		})
	}
}
