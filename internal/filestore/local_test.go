package filestore

import (
	"context"
	"io"
	"testing"

	"github.com/gamevault/gamevault/internal/config"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) Store {
	store, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	return store
}

func TestLocalSaveOpenDelete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	key := "Dota 2 (570)/screenshots/steam_1001.jpg"

	require.NoError(t, SaveBytes(ctx, store, key, []byte("image-bytes")))

	r, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, []byte("image-bytes"), data)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	require.Error(t, err)

	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(ctx, key))
}

func TestLocalRejectsTraversal(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "/abs/path", "a/../b", "..", `a\b`} {
		require.Error(t, SaveBytes(ctx, store, key, []byte("x")), "key %q", key)
		_, err := store.Open(ctx, key)
		require.Error(t, err, "key %q", key)
	}
}

func TestLocalURL(t *testing.T) {
	store := newLocalStore(t)
	require.Equal(t,
		"http://localhost:8080/api/v1/files/g/screenshots/a.jpg",
		store.URL("g/screenshots/a.jpg", "http://localhost:8080/"))

	withPublic, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir(), "public_url": "https://cdn.example/lib"},
	})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/lib/g/screenshots/a.jpg", withPublic.URL("g/screenshots/a.jpg", ""))
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{})
	require.Error(t, err)
}
