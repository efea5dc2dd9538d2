package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ignorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ignore.csv")
}

func TestIgnoreMissingFileStartsEmpty(t *testing.T) {
	s := NewIgnore(ignorePath(t), testLogger())
	assert.Empty(t, s.Keys())
	assert.False(t, s.IsIgnored("abc"))
}

func TestIgnoreAddPersists(t *testing.T) {
	path := ignorePath(t)
	s := NewIgnore(path, testLogger())
	require.NoError(t, s.Add("key-one"))
	require.NoError(t, s.Add("key-two"))
	assert.True(t, s.IsIgnored("key-one"))

	reloaded := NewIgnore(path, testLogger())
	assert.Equal(t, []string{"key-one", "key-two"}, reloaded.Keys())
}

func TestIgnoreAddIdempotent(t *testing.T) {
	s := NewIgnore(ignorePath(t), testLogger())
	require.NoError(t, s.Add("key-one"))
	require.NoError(t, s.Add("key-one"))
	assert.Equal(t, []string{"key-one"}, s.Keys())
}

func TestIgnoreRemove(t *testing.T) {
	path := ignorePath(t)
	s := NewIgnore(path, testLogger())
	require.NoError(t, s.Add("key-one"))
	require.NoError(t, s.Add("key-two"))
	require.NoError(t, s.Add("key-three"))

	require.NoError(t, s.Remove("key-two"))
	assert.False(t, s.IsIgnored("key-two"))
	assert.Equal(t, []string{"key-one", "key-three"}, s.Keys())

	// removing a key that is not ignored is a no-op
	require.NoError(t, s.Remove("key-two"))

	reloaded := NewIgnore(path, testLogger())
	assert.Equal(t, []string{"key-one", "key-three"}, reloaded.Keys())
}

func TestIgnoreLoadSkipsDuplicatesAndBlanks(t *testing.T) {
	path := ignorePath(t)
	require.NoError(t, os.WriteFile(path, []byte(
		"transaction_key\n"+
			"key-one\n"+
			"key-one\n"+
			"\n"+
			"key-two\n"), 0o644))

	s := NewIgnore(path, testLogger())
	assert.Equal(t, []string{"key-one", "key-two"}, s.Keys())
}

func TestIgnoreSaveFailureReverts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignore.csv")
	s := NewIgnore(path, testLogger())
	require.NoError(t, s.Add("key-one"))

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	require.Error(t, s.Add("key-two"))
	assert.False(t, s.IsIgnored("key-two"))
	assert.Equal(t, []string{"key-one"}, s.Keys())

	require.Error(t, s.Remove("key-one"))
	assert.True(t, s.IsIgnored("key-one"))
	assert.Equal(t, []string{"key-one"}, s.Keys())
}
