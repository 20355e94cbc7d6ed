package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-madlibs/internal/catalog"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
	"github.com/dpshade/pocket-madlibs/internal/storage"
)

// recordingStore counts calls on top of a real answer store
type recordingStore struct {
	*storage.AnswerStore
	saves, loads, deletes int
}

func (r *recordingStore) Save(id string, a models.AnswerSet) {
	r.saves++
	r.AnswerStore.Save(id, a)
}

func (r *recordingStore) Load(id string) (models.AnswerSet, bool) {
	r.loads++
	return r.AnswerStore.Load(id)
}

func (r *recordingStore) Delete(id string) {
	r.deletes++
	r.AnswerStore.Delete(id)
}

func newFixture(t *testing.T) (*catalog.Catalog, *recordingStore) {
	t.Helper()
	cat, err := catalog.FromTemplates(&models.Template{
		ID:   "t2",
		Name: "Two Words",
		Words: []models.WordSlot{
			{ID: "w1", Type: "noun", Label: "Noun"},
			{ID: "w2", Type: "verb", Label: "Verb"},
		},
		Body: "The {{w1}} likes to {{w2}}.",
	})
	require.NoError(t, err)
	return cat, &recordingStore{AnswerStore: storage.NewAnswerStore(storage.NewMemoryKV(), nil)}
}

func TestNewStartsBlank(t *testing.T) {
	cat, store := newFixture(t)

	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	assert.Equal(t, models.AnswerSet{"w1": "", "w2": ""}, c.Answers())
	assert.False(t, c.IsComplete())
	assert.Equal(t, NotStarted, c.State())
}

func TestNewUnknownTemplateSkipsStorage(t *testing.T) {
	cat, store := newFixture(t)

	_, err := New(cat, store, "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTemplateNotFound))
	assert.Zero(t, store.loads+store.saves+store.deletes)
}

func TestNewLoadsSavedAnswers(t *testing.T) {
	cat, store := newFixture(t)
	store.AnswerStore.Save("t2", models.AnswerSet{"w1": "elf", "w2": "dance"})

	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	assert.Equal(t, "elf", c.Answer("w1"))
	assert.True(t, c.IsComplete())
	assert.Equal(t, Completed, c.State())

	c.SetAnswer("w2", "sing")
	assert.Equal(t, InProgress, c.State())
}

func TestIsCompleteIgnoresWhitespace(t *testing.T) {
	cat, store := newFixture(t)
	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	c.SetAnswer("w1", "elf")
	c.SetAnswer("w2", "   ")
	assert.False(t, c.IsComplete())
	require.Len(t, c.Missing(), 1)
	assert.Equal(t, "w2", c.Missing()[0].ID)

	c.SetAnswer("w2", " dance ")
	assert.True(t, c.IsComplete())
	assert.Empty(t, c.Missing())
}

func TestSubmitIncompleteWritesNothing(t *testing.T) {
	cat, store := newFixture(t)
	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	c.SetAnswer("w1", "reindeer")
	err = c.Submit()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	assert.Contains(t, apperrors.GetAppError(err).Details, "Verb")

	assert.Zero(t, store.saves)
	assert.False(t, store.Exists("t2"))
	assert.Equal(t, InProgress, c.State())
}

func TestSubmitSaves(t *testing.T) {
	cat, store := newFixture(t)
	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	c.SetAnswer("w1", "reindeer")
	c.SetAnswer("w2", "fly")
	require.NoError(t, c.Submit())

	assert.Equal(t, 1, store.saves)
	got, found := store.Load("t2")
	require.True(t, found)
	assert.Equal(t, models.AnswerSet{"w1": "reindeer", "w2": "fly"}, got)
	assert.Equal(t, Completed, c.State())
}

func TestAnswersIsACopy(t *testing.T) {
	cat, store := newFixture(t)
	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	a := c.Answers()
	a["w1"] = "changed"
	assert.Equal(t, "", c.Answer("w1"))
}

func TestResetRequiresConfirmation(t *testing.T) {
	cat, store := newFixture(t)
	store.AnswerStore.Save("t2", models.AnswerSet{"w1": "elf", "w2": "dance"})
	c, err := New(cat, store, "t2")
	require.NoError(t, err)

	err = c.ConfirmReset()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfirmation))

	c.RequestReset()
	assert.True(t, c.ResetPending())
	assert.Zero(t, store.deletes, "requesting alone deletes nothing")
	assert.True(t, store.Exists("t2"))
	assert.Equal(t, "elf", c.Answer("w1"))

	c.CancelReset()
	assert.False(t, c.ResetPending())
	assert.Error(t, c.ConfirmReset())
	assert.True(t, store.Exists("t2"))

	c.RequestReset()
	require.NoError(t, c.ConfirmReset())
	assert.False(t, c.ResetPending())
	assert.Equal(t, 1, store.deletes)
	assert.False(t, store.Exists("t2"))
	assert.Equal(t, models.AnswerSet{"w1": "", "w2": ""}, c.Answers())
	assert.Equal(t, NotStarted, c.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not started", NotStarted.String())
	assert.Equal(t, "in progress", InProgress.String())
	assert.Equal(t, "completed", Completed.String())
}
