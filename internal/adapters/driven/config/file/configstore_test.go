package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGetRoundTrip(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("retrieval.chunk_size", 800))
	require.NoError(t, store.Set("github.repo", "octocat/hello-world"))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, 800, store.GetInt("retrieval.chunk_size"))
	assert.Equal(t, "octocat/hello-world", store.GetString("github.repo"))
	assert.True(t, store.GetBool("verbose"))

	// Missing keys come back as zero values.
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Equal(t, "", store.GetString("missing"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("ai.provider", "gemini"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "gemini", reopened.GetString("ai.provider"))
}

func TestConfigStore_Delete(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "value"))
	require.NoError(t, store.Delete("key"))

	_, ok := store.Get("key")
	assert.False(t, ok)

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok = reopened.Get("key")
	assert.False(t, ok)
}

func TestConfigStore_IntSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("retrieval.top_k", 5))

	// After a reload the value arrives as a TOML int64 and must still
	// read back as an int.
	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, reopened.GetInt("retrieval.top_k"))
}

func TestConfigStore_GetIntCoercesWholeFloats(t *testing.T) {
	dir := t.TempDir()
	toml := "[retrieval]\ntop_k = 3.0\noverlap = 1.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 0, store.GetInt("retrieval.overlap"), "fractional values are not integers")
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("retrieval.chunk_size", 800))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[retrieval]")
	assert.NotContains(t, string(raw), `"retrieval.chunk_size"`)
}

func TestConfigStore_FlattensNestedTOML(t *testing.T) {
	dir := t.TempDir()
	toml := "[retrieval]\nchunk_size = 400\noverlap = 100\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 400, store.GetInt("retrieval.chunk_size"))
	assert.Equal(t, 100, store.GetInt("retrieval.overlap"))
}
