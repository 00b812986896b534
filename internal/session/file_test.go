package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set("user-123", "96170123456"))

	id, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)

	ph, err := store.Phone()
	require.NoError(t, err)
	assert.Equal(t, "96170123456", ph)

	// A fresh store on the same path must see the persisted values.
	reloaded := NewFileStore(path)
	id, err = reloaded.Get()
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestFileStoreLegacyKeyFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	data, err := json.Marshal(map[string]string{"sb_user_id_v1": "legacy-id"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	store := NewFileStore(path)
	id, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "legacy-id", id)
}

func TestFileStoreWritesLegacyKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Set("user-123", ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	values := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &values))
	assert.Equal(t, "user-123", values["currentUserId"])
	assert.Equal(t, "user-123", values["sb_user_id_v1"])
	_, ok := values["currentPhone"]
	assert.False(t, ok)
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Set("user-123", "96170123456"))
	require.NoError(t, store.Clear())

	id, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, id)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	values := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &values))
	assert.Empty(t, values["currentUserId"])
	assert.Empty(t, values["currentPhone"])
	assert.Empty(t, values["sb_user_id_v1"])
}

func TestFileStoreGetWithoutFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	id, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Set("user-123", ""))

	id, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}
