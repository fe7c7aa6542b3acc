package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewProgressFileStore(path)

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Save(map[string]bool{"Month 1* Learn SQL": true, "Month 1* Learn Go": false}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Month 1* Learn SQL": true, "Month 1* Learn Go": false}, loaded)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Month 1* Learn SQL": true`)
}

func TestProgressFileStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewProgressFileStore(path).Load()
	assert.Error(t, err)
}
