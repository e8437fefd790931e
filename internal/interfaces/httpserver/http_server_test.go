package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/blob"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	domainimage "github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/httpclients"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/inference"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/repository/recordrepo"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/storage"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/handlers"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/recordid"
)

const generationReply = "```json\n" + `{"improvedPrompt":"a fluffy cat, studio lighting","mainDifferences":"added lighting","tags":{"included":["fluffy"],"notIncluded":[]},"pointOfViews":["front"]}` + "\n```"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   http.Handler
	store    *recordrepo.MemoryStore
	filesDir string
}

func sourcePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for x := 0; x < 300; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func chatBackend(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		last := req.Messages[len(req.Messages)-1].Content

		content := generationReply
		switch {
		case last == "rate limited":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		case last == "garbage":
			content = "I cannot help with that."
		case strings.HasPrefix(last, "{"):
			content = `{"revisedPrompt":"a cat in the rain","summaryOfChanges":"added rain"}`
		case req.Messages[0].Role == "user":
			content = "hello back"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
}

func imageBackend(t *testing.T, payload []byte) *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download/cat.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(payload)
			return
		}
		var req openai.ImageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(req.Prompt, "forbidden") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"content_policy_violation"}}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"created":1,"data":[{"revised_prompt":"x"},{"url":"%s/download/cat.png"}]}`, srv.URL)
	}))
	return srv
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	chatSrv := chatBackend(t)
	t.Cleanup(chatSrv.Close)
	imageSrv := imageBackend(t, sourcePNG(t))
	t.Cleanup(imageSrv.Close)

	filesDir := t.TempDir()
	cfg := &config.Config{
		ServiceName:     "assistant-api",
		MaxUploadBytes:  1 << 20,
		AuthDevUsername: "alice",
	}

	templates, err := prompt.LoadTemplates("")
	require.NoError(t, err)

	store := recordrepo.NewMemoryStore()
	local, err := storage.NewLocalStorage(&config.Config{LocalStoragePath: filesDir}, log)
	require.NoError(t, err)
	blobs := blob.NewService(local, "http://files.test/", ".png", log)

	chatClient := inference.NewChatCompletionClient(httpclients.NewClient("chat", 5*time.Second), "chat", chatSrv.URL, "key")
	chatService := chat.NewService(chatClient, store, "gpt-4o-mini", log)
	promptService := prompt.NewService(chatClient, store, chatService, templates, "gpt-4o-mini", nil, log)
	imageService := domainimage.NewService(
		promptService,
		inference.NewImageGenerationClient(httpclients.NewClient("image", 5*time.Second), imageSrv.URL, "key"),
		inference.NewDownloader(httpclients.NewClient("download", 5*time.Second), 10<<20),
		blobs,
		store,
		domainimage.Settings{Model: "dall-e-3", Size: "1024x1024", Style: "vivid", Quality: "standard", N: 1},
		cfg.MaxUploadBytes,
		log,
	)

	provider := handlers.NewProvider(cfg, promptService, imageService, chatService, log)
	server := New(cfg, log, provider, nil, Options{
		FilesDir:  filesDir,
		Readiness: map[string]HealthCheck{"storage": blobs.Health},
	})
	return &testEnv{router: server.Handler(), store: store, filesDir: filesDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreateImagePromptEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/imagePrompt", map[string]string{"prompt": "a cat"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var record prompt.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "a fluffy cat, studio lighting", record.ImprovedPrompt)
	assert.Equal(t, "a cat", record.OriginalPrompt)
	assert.Equal(t, "front", record.PointOfView)
	assert.Equal(t, "alice", record.Username)
	assert.True(t, recordid.IsValid(recordid.PrefixPrompt, record.ID))
	assert.True(t, recordid.IsValid(recordid.PrefixConversation, record.ConversationID))

	w = env.do(t, http.MethodGet, "/imagePrompt/"+record.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), record.ID)

	chats := env.store.Chats()
	require.Len(t, chats, 1)
	assert.Empty(t, chats[0].Error)
}

func TestCreateImagePromptErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/imagePrompt", map[string]string{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/imagePrompt", map[string]string{"prompt": "a cat", "mode": "medium"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/imagePrompt", map[string]string{"prompt": "garbage"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = env.do(t, http.MethodPost, "/imagePrompt", map[string]string{"prompt": "rate limited"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":{"message":"slow down"}}`, w.Body.String())

	chats := env.store.Chats()
	require.Len(t, chats, 2)
	assert.NotEmpty(t, chats[1].Error)

	w = env.do(t, http.MethodGet, "/imagePrompt/prm_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviseImagePrompt(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/imagePrompt", map[string]any{
		"prompt":       "a cat",
		"revisionTags": map[string][]string{"toInclude": {"rain"}, "toExclude": {"sun"}},
		"pointOfView":  "aerial",
		"imageStyle":   "watercolor",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID               string `json:"id"`
		RevisedPrompt    string `json:"revisedPrompt"`
		SummaryOfChanges string `json:"summaryOfChanges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a cat in the rain", resp.RevisedPrompt)
	assert.Equal(t, "added rain", resp.SummaryOfChanges)

	w = env.do(t, http.MethodPut, "/imagePrompt", map[string]any{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateImageAndList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/imagePrompt", map[string]string{"prompt": "a cat"})
	require.Equal(t, http.StatusOK, w.Code)
	var record prompt.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))

	w = env.do(t, http.MethodPost, "/imagePrompt/"+record.ID+"/image", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var generated struct {
		ID          string                `json:"id"`
		ImageData   domainimage.Data      `json:"imageData"`
		ImagePrompt domainimage.PromptRef `json:"imagePrompt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	assert.Equal(t, "http://files.test/"+generated.ID+".png", generated.ImageData.URL)
	assert.Equal(t, "http://files.test/"+generated.ID+"_small.png", generated.ImageData.SmallURL)
	assert.Equal(t, record.ID, generated.ImagePrompt.ID)
	assert.Equal(t, record.ImprovedPrompt, generated.ImagePrompt.Prompt)

	for _, name := range []string{".png", "_small.png", "_medium.png", "_large.png"} {
		_, err := os.Stat(filepath.Join(env.filesDir, generated.ID+name))
		assert.NoError(t, err, name)
	}

	w = env.do(t, http.MethodGet, "/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Images []struct {
			ID            string `json:"id"`
			ImagePromptID string `json:"imagePromptId"`
			LargeURL      string `json:"largeUrl"`
		} `json:"images"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Images, 1)
	assert.Equal(t, generated.ID, list.Images[0].ID)
	assert.Equal(t, record.ID, list.Images[0].ImagePromptID)

	w = env.do(t, http.MethodGet, "/files/"+generated.ID+"_large.png", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateImageProviderErrorIsRelayedAndHidden(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.CreatePrompt(context.Background(), &prompt.Record{
		ID:             "prm_forbidden",
		Username:       "alice",
		OriginalPrompt: "something forbidden",
		Timestamp:      time.Now().UTC(),
	}))

	w := env.do(t, http.MethodPost, "/imagePrompt/prm_forbidden/image", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"content_policy_violation"}}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"images":[]}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/imagePrompt/prm_unknown/image", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadUserImage(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "Holiday.PNG")
	require.NoError(t, err)
	_, err = part.Write(sourcePNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/userimage", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded domainimage.UserImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.True(t, strings.HasPrefix(uploaded.URL, "http://files.test/uim_"))
	assert.True(t, strings.HasSuffix(uploaded.ThumbnailMedium, "_medium.png"))

	req = httptest.NewRequest(http.MethodPost, "/userimage", strings.NewReader("nothing"))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reply chat.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "hello back", reply.Message.Content)
	assert.True(t, recordid.IsValid(recordid.PrefixChat, reply.ID))

	w = env.do(t, http.MethodPost, "/chat", map[string]any{
		"messages": []map[string]string{{"role": "wizard", "content": "hi"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationalRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/healthz", "/readyz", "/metrics"} {
		w := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
