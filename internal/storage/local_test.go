package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8390/assets/", slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return store
}

func TestNewLocalStoreRequiresRoot(t *testing.T) {
	_, err := NewLocalStore("", "http://x", slog.Default())
	assert.Error(t, err)
}

func TestSaveTempAndMove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assetID, err := store.SaveTemp(ctx, []byte("<svg/>"), "image/svg+xml")
	require.NoError(t, err)
	require.NotEmpty(t, assetID)

	content, err := os.ReadFile(filepath.Join(store.root, tempDir, assetID))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(content))

	url, err := store.MoveFromTemp(ctx, assetID, "badge-assets/gold-star/icon.svg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8390/assets/badge-assets/gold-star/icon.svg", url)

	moved, err := os.ReadFile(filepath.Join(store.root, "badge-assets", "gold-star", "icon.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(moved))

	// Temp copy and its mime sidecar are gone after commit.
	_, err = os.Stat(filepath.Join(store.root, tempDir, assetID))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.root, tempDir, assetID+".mime"))
	assert.True(t, os.IsNotExist(err))
}

func TestMoveFromTempMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.MoveFromTemp(context.Background(), "does-not-exist", "badge-assets/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMoveFromTempRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assetID, err := store.SaveTemp(ctx, []byte("x"), "image/png")
	require.NoError(t, err)

	_, err = store.MoveFromTemp(ctx, assetID, "../../etc/owned")
	require.NoError(t, err)

	// The key is cleaned relative to the root, never outside it.
	_, statErr := os.Stat(filepath.Join(store.root, "etc", "owned"))
	assert.NoError(t, statErr)
}

func TestUploadContent(t *testing.T) {
	store := newTestStore(t)

	url, err := store.UploadContent(context.Background(), "badge-assets/direct.png", []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8390/assets/badge-assets/direct.png", url)

	content, err := os.ReadFile(filepath.Join(store.root, "badge-assets", "direct.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, content)
}

func TestDeleteTemp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assetID, err := store.SaveTemp(ctx, []byte("x"), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.DeleteTemp(ctx, assetID))
	_, err = os.Stat(filepath.Join(store.root, tempDir, assetID))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error.
	assert.NoError(t, store.DeleteTemp(ctx, assetID))
}

func TestUploadRefHelpers(t *testing.T) {
	ref := UploadRef("abc-123")
	assert.Equal(t, "upload://abc-123", ref)
	assert.True(t, IsUploadRef(ref))
	assert.False(t, IsUploadRef("https://cdn.example.com/a.png"))

	id, ok := ParseUploadRef(ref)
	assert.True(t, ok)
	assert.Equal(t, "abc-123", id)

	_, ok = ParseUploadRef("https://cdn.example.com/a.png")
	assert.False(t, ok)
}
