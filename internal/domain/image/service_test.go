package image

import (
	"bytes"
	"context"
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

type mockPrompts struct {
	GetFunc func(ctx context.Context, username, id string) (*prompt.Record, error)
}

func (m *mockPrompts) Get(ctx context.Context, username, id string) (*prompt.Record, error) {
	return m.GetFunc(ctx, username, id)
}

type mockProvider struct {
	GenerateFunc func(ctx context.Context, req llm.ImageGenerationRequest) (*llm.ImageGenerationResult, error)
	last         llm.ImageGenerationRequest
}

func (m *mockProvider) GenerateImage(ctx context.Context, req llm.ImageGenerationRequest) (*llm.ImageGenerationResult, error) {
	m.last = req
	return m.GenerateFunc(ctx, req)
}

type mockFetcher struct {
	body    []byte
	err     error
	fetched []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, string, error) {
	m.fetched = append(m.fetched, url)
	if m.err != nil {
		return nil, "", m.err
	}
	return m.body, "image/png", nil
}

type mockBlobs struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	failAt   int
	onUpload func(n int)
}

func (m *mockBlobs) Upload(_ context.Context, _ []byte, filename string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.uploaded) + 1
	if m.onUpload != nil {
		m.onUpload(n)
	}
	if m.failAt == n {
		return "", errors.New("storage unavailable")
	}
	m.uploaded = append(m.uploaded, filename)
	return "https://cdn.test/" + strings.ToLower(filename), nil
}

func (m *mockBlobs) Delete(_ context.Context, filenames []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, filenames...)
	return nil
}

type memoryRepo struct {
	mu      sync.Mutex
	records []*Record
}

func (r *memoryRepo) CreateImage(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records = append(r.records, &copied)
	return nil
}

func (r *memoryRepo) ListImages(_ context.Context, filter Filter) ([]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Record
	for _, rec := range r.records {
		if rec.Username == filter.Username {
			out = append(out, rec)
		}
	}
	return out, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var testSettings = Settings{Model: "dall-e-3", Size: "1024x1024", Style: "vivid", Quality: "standard", N: 1, OriginalExt: ".png"}

func storedPrompt() *mockPrompts {
	return &mockPrompts{GetFunc: func(ctx context.Context, username, id string) (*prompt.Record, error) {
		if id != "prm_1" || username != "alice" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "prompt record not found", nil, "")
		}
		return &prompt.Record{ID: "prm_1", Username: "alice", OriginalPrompt: "a cat", ImprovedPrompt: "a fluffy cat"}, nil
	}}
}

func okProvider(raw string) *mockProvider {
	return &mockProvider{GenerateFunc: func(context.Context, llm.ImageGenerationRequest) (*llm.ImageGenerationResult, error) {
		return &llm.ImageGenerationResult{Raw: []byte(raw), StatusCode: http.StatusOK}, nil
	}}
}

func TestGenerateFromPromptUsesFirstURLOnly(t *testing.T) {
	provider := okProvider(`{"created":1,"data":[{"url":"a"},{"url":"b"}]}`)
	fetcher := &mockFetcher{body: pngBytes(t, 512, 256)}
	blobs := &mockBlobs{}
	repo := &memoryRepo{}
	svc := NewService(storedPrompt(), provider, fetcher, blobs, repo, testSettings, 0, zerolog.Nop())

	record, err := svc.GenerateFromPrompt(context.Background(), "alice", "prm_1")
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, fetcher.fetched)
	assert.Equal(t, "a fluffy cat", provider.last.Prompt)
	assert.Equal(t, "dall-e-3", provider.last.Model)
	assert.Equal(t, 1, provider.last.N)

	id := record.ID
	require.True(t, strings.HasPrefix(id, "img_"))
	assert.Equal(t, []string{id + ".png", id + "_small", id + "_medium", id + "_large"}, blobs.uploaded)
	assert.Equal(t, Data{
		URL:       "https://cdn.test/" + id + ".png",
		SmallURL:  "https://cdn.test/" + id + "_small",
		MediumURL: "https://cdn.test/" + id + "_medium",
		LargeURL:  "https://cdn.test/" + id + "_large",
	}, record.Data)
	assert.False(t, record.HasError)
	assert.Equal(t, PromptRef{ID: "prm_1", Prompt: "a fluffy cat"}, record.Prompt)

	require.Len(t, repo.records, 1)
	stored := repo.records[0]
	assert.Equal(t, id, stored.ID)
	model, _ := stored.RequestPayload.Get("model")
	assert.Equal(t, "dall-e-3", model.Str())
	data, _ := stored.ResponsePayload.Get("data")
	assert.Equal(t, 2, data.Len())
}

func TestGenerateFromPromptSkipsEntriesWithoutURL(t *testing.T) {
	fetcher := &mockFetcher{body: pngBytes(t, 64, 64)}
	svc := NewService(storedPrompt(), okProvider(`{"data":[{"b64_json":"xx"},{"url":""},{"url":"c"}]}`), fetcher, &mockBlobs{}, &memoryRepo{}, testSettings, 0, zerolog.Nop())

	_, err := svc.GenerateFromPrompt(context.Background(), "alice", "prm_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, fetcher.fetched)
}

func TestGenerateFromPromptProviderError(t *testing.T) {
	provider := &mockProvider{GenerateFunc: func(context.Context, llm.ImageGenerationRequest) (*llm.ImageGenerationResult, error) {
		return &llm.ImageGenerationResult{
			Raw:         []byte(`{"error":{"code":"content_policy_violation"}}`),
			StatusCode:  http.StatusBadRequest,
			ContentType: "application/json",
			IsError:     true,
		}, nil
	}}
	fetcher := &mockFetcher{}
	blobs := &mockBlobs{}
	repo := &memoryRepo{}
	svc := NewService(storedPrompt(), provider, fetcher, blobs, repo, testSettings, 0, zerolog.Nop())

	_, err := svc.GenerateFromPrompt(context.Background(), "alice", "prm_1")

	var providerErr *llm.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
	assert.JSONEq(t, `{"error":{"code":"content_policy_violation"}}`, string(providerErr.Body))

	require.Len(t, repo.records, 1)
	assert.True(t, repo.records[0].HasError)
	assert.True(t, repo.records[0].Data.IsEmpty())
	assert.Empty(t, fetcher.fetched)
	assert.Empty(t, blobs.uploaded)
}

func TestGenerateFromPromptWithoutURL(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(storedPrompt(), okProvider(`{"data":[]}`), &mockFetcher{}, &mockBlobs{}, repo, testSettings, 0, zerolog.Nop())

	_, err := svc.GenerateFromPrompt(context.Background(), "alice", "prm_1")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
	require.Len(t, repo.records, 1)
	assert.True(t, repo.records[0].HasError)
}

func TestGenerateFromPromptUnknownPrompt(t *testing.T) {
	provider := okProvider(`{}`)
	svc := NewService(storedPrompt(), provider, &mockFetcher{}, &mockBlobs{}, &memoryRepo{}, testSettings, 0, zerolog.Nop())

	_, err := svc.GenerateFromPrompt(context.Background(), "bob", "prm_1")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.Empty(t, provider.last.Prompt)
}

func TestGenerateFromPromptUploadFailureIsNotCompensated(t *testing.T) {
	blobs := &mockBlobs{failAt: 3}
	repo := &memoryRepo{}
	svc := NewService(storedPrompt(), okProvider(`{"data":[{"url":"a"}]}`), &mockFetcher{body: pngBytes(t, 100, 100)}, blobs, repo, testSettings, 0, zerolog.Nop())

	_, err := svc.GenerateFromPrompt(context.Background(), "alice", "prm_1")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeStorage))
	assert.Len(t, blobs.uploaded, 2)
	assert.Empty(t, blobs.deleted)
	require.Len(t, repo.records, 1)
	assert.True(t, repo.records[0].HasError)
}

func TestGenerateFromPromptTransportFailure(t *testing.T) {
	provider := &mockProvider{GenerateFunc: func(context.Context, llm.ImageGenerationRequest) (*llm.ImageGenerationResult, error) {
		return nil, errors.New("connection reset by peer")
	}}
	repo := &memoryRepo{}
	svc := NewService(storedPrompt(), provider, &mockFetcher{}, &mockBlobs{}, repo, testSettings, 0, zerolog.Nop())

	_, err := svc.GenerateFromPrompt(context.Background(), "alice", "prm_1")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
	require.Len(t, repo.records, 1)
	assert.Equal(t, "connection reset by peer", repo.records[0].ResponsePayload.Str())
}

func TestListFiltersOwnerAndErrors(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &memoryRepo{records: []*Record{
		{ID: "img_old", Username: "alice", Timestamp: base},
		{ID: "img_failed", Username: "alice", Timestamp: base.Add(2 * time.Hour), HasError: true},
		{ID: "img_new", Username: "alice", Timestamp: base.Add(time.Hour)},
		{ID: "img_bob", Username: "bob", Timestamp: base.Add(3 * time.Hour)},
	}}
	svc := NewService(storedPrompt(), okProvider(`{}`), &mockFetcher{}, &mockBlobs{}, repo, testSettings, 0, zerolog.Nop())

	records, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "img_new", records[0].ID)
	assert.Equal(t, "img_old", records[1].ID)
}

func TestUploadUserImage(t *testing.T) {
	blobs := &mockBlobs{}
	svc := NewService(storedPrompt(), okProvider(`{}`), &mockFetcher{}, blobs, &memoryRepo{}, testSettings, 1<<20, zerolog.Nop())

	out, err := svc.UploadUserImage(context.Background(), "alice", pngBytes(t, 300, 150))
	require.NoError(t, err)

	require.Len(t, blobs.uploaded, 4)
	assert.True(t, strings.HasPrefix(out.ID, "uim_"))
	assert.Equal(t, out.ID+".png", blobs.uploaded[0])
	assert.Equal(t, "https://cdn.test/"+out.ID+".png", out.URL)
	assert.Equal(t, "https://cdn.test/"+out.ID+"_small", out.ThumbnailSmall)
	assert.Equal(t, "https://cdn.test/"+out.ID+"_medium", out.ThumbnailMedium)
	assert.Equal(t, "https://cdn.test/"+out.ID+"_large", out.ThumbnailLarge)
}

func TestUploadUserImageCleansUpAfterFailure(t *testing.T) {
	blobs := &mockBlobs{failAt: 3}
	svc := NewService(storedPrompt(), okProvider(`{}`), &mockFetcher{}, blobs, &memoryRepo{}, testSettings, 0, zerolog.Nop())

	_, err := svc.UploadUserImage(context.Background(), "alice", pngBytes(t, 80, 80))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeStorage))
	assert.Equal(t, blobs.uploaded, blobs.deleted)
	assert.Len(t, blobs.deleted, 2)
}

func TestUploadUserImageCleansUpAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	blobs := &mockBlobs{onUpload: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	svc := NewService(storedPrompt(), okProvider(`{}`), &mockFetcher{}, blobs, &memoryRepo{}, testSettings, 0, zerolog.Nop())

	_, err := svc.UploadUserImage(ctx, "alice", pngBytes(t, 80, 80))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeCanceled))
	assert.Len(t, blobs.uploaded, 2)
	assert.Equal(t, blobs.uploaded, blobs.deleted)
}

func TestUploadUserImageValidation(t *testing.T) {
	svc := NewService(storedPrompt(), okProvider(`{}`), &mockFetcher{}, &mockBlobs{}, &memoryRepo{}, testSettings, 64, zerolog.Nop())

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not an image", []byte("%PDF-1.4 hello")},
		{"too large", bytes.Repeat([]byte{0x89}, 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadUserImage(context.Background(), "alice", tt.data)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
		})
	}
}
