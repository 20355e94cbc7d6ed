package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the same contract against every backend
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	_, found, err := kv.Get("madlib_missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set("madlib_t1", `{"w1":"reindeer"}`))
	v, found, err := kv.Get("madlib_t1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"w1":"reindeer"}`, v)

	require.NoError(t, kv.Set("madlib_t1", `{"w1":"elf"}`))
	v, _, _ = kv.Get("madlib_t1")
	assert.Equal(t, `{"w1":"elf"}`, v)

	require.NoError(t, kv.Set("madlib_odd/id with spaces", "x"))
	v, found, err = kv.Get("madlib_odd/id with spaces")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", v)

	if lister, ok := kv.(Lister); ok {
		keys, err := lister.Keys(KeyPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{"madlib_odd/id with spaces", "madlib_t1"}, keys)
	}

	require.NoError(t, kv.Delete("madlib_t1"))
	_, found, err = kv.Get("madlib_t1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Delete("madlib_t1"), "deleting a missing key is a no-op")
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "answers"))
	require.NoError(t, err)
	exerciseKV(t, kv)

	// No temp files are left behind
	entries, err := os.ReadDir(kv.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestSQLiteKV(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "madlibs.db"))
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestSQLiteKVPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "madlibs.db")

	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set("madlib_t1", "saved"))
	require.NoError(t, kv.Close())

	kv, err = NewSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()
	v, found, err := kv.Get("madlib_t1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "saved", v)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{"", BackendFile, BackendSQLite, BackendMemory} {
		kv, closeFn, err := Open(backend, dir)
		require.NoError(t, err, backend)
		exerciseKV(t, kv)
		require.NoError(t, closeFn())
	}

	_, _, err := Open("redis", dir)
	assert.Error(t, err)
}
