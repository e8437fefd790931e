package blob

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	deleted   []string
	deleteErr map[string]error
	putErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}, deleteErr: map[string]error{}}
}

func (f *fakeStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if err, ok := f.deleteErr[key]; ok {
		return err
	}
	if _, ok := f.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Health(context.Context) error { return nil }

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadLowercasesAndAddsExtension(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, "https://cdn.example.com/images/", "png", zerolog.Nop())

	url, err := svc.Upload(context.Background(), pngMagic, "IMG_01ABC_Small")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/img_01abc_small.png", url)
	assert.Contains(t, store.objects, "img_01abc_small.png")
	assert.Equal(t, "image/png", store.types["img_01abc_small.png"])

	url, err = svc.Upload(context.Background(), pngMagic, "Photo.JPG")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/photo.jpg", url)
}

func TestURLForMatchesUpload(t *testing.T) {
	svc := NewService(newFakeStore(), "http://localhost/files/", ".png", zerolog.Nop())
	url, err := svc.Upload(context.Background(), pngMagic, "img_x_large")
	require.NoError(t, err)
	assert.Equal(t, svc.URLFor("img_x_large"), url)
}

func TestUploadErrors(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("throttled")
	svc := NewService(store, "b/", ".png", zerolog.Nop())

	_, err := svc.Upload(context.Background(), pngMagic, "a.png")
	assert.ErrorContains(t, err, "throttled")

	_, err = svc.Upload(context.Background(), pngMagic, "  ")
	assert.Error(t, err)
}

func TestDeleteSkipsMissingAndContinues(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, "b/", ".png", zerolog.Nop())
	for _, name := range []string{"a", "c"} {
		_, err := svc.Upload(context.Background(), pngMagic, name)
		require.NoError(t, err)
	}

	err := svc.Delete(context.Background(), []string{"a", "missing", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "missing.png", "c.png"}, store.deleted)
	assert.Empty(t, store.objects)
}

func TestDeleteAggregatesOtherFailures(t *testing.T) {
	store := newFakeStore()
	store.deleteErr["a.png"] = errors.New("access denied")
	store.deleteErr["b.png"] = errors.New("timeout")
	svc := NewService(store, "b/", ".png", zerolog.Nop())

	err := svc.Delete(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, err, "timeout")
	assert.Len(t, store.deleted, 3)
}
