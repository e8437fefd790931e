package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/blob"
)

func TestLocalStoragePutDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(&config.Config{LocalStoragePath: dir}, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "img_1.png", []byte("data"), "image/png"))
	got, err := os.ReadFile(filepath.Join(dir, "img_1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	require.NoError(t, store.Put(ctx, "img_1.png", []byte("again"), "image/png"))
	got, err = os.ReadFile(filepath.Join(dir, "img_1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("again"), got)

	require.NoError(t, store.Delete(ctx, "img_1.png"))
	assert.ErrorIs(t, store.Delete(ctx, "img_1.png"), blob.ErrObjectNotFound)

	require.NoError(t, store.Health(ctx))
}

func TestLocalStorageKeepsKeysInsideBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(&config.Config{LocalStoragePath: dir}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "../escape.png", []byte("x"), "image/png"))
	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err)

	assert.Error(t, store.Put(context.Background(), "", []byte("x"), "image/png"))
}

func TestDisabledBackends(t *testing.T) {
	ctx := context.Background()

	s3Store, err := NewS3Storage(ctx, &config.Config{S3Region: "us-east-1"}, zerolog.Nop())
	require.NoError(t, err)
	assert.ErrorIs(t, s3Store.Put(ctx, "a.png", nil, "image/png"), errStorageDisabled)
	assert.NoError(t, s3Store.Health(ctx))

	gcsStore, err := NewGCSStorage(ctx, &config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.ErrorIs(t, gcsStore.Delete(ctx, "a.png"), errStorageDisabled)

	azureStore, err := NewAzureStorage(&config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.ErrorIs(t, azureStore.Put(ctx, "a.png", nil, "image/png"), errStorageDisabled)
}

func TestNewSelectsBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{StorageBackend: config.StorageLocal, LocalStoragePath: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, store)

	_, err = New(context.Background(), &config.Config{StorageBackend: "ftp"}, zerolog.Nop())
	assert.Error(t, err)
}
