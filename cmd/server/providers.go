package main

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/blob"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/auth"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/database"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/httpclients"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/inference"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/logger"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/repository/recordrepo"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/storage"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/handlers"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/sanitize"
)

// RecordStore is implemented by the postgres and in-memory repositories.
type RecordStore interface {
	prompt.Repository
	image.Repository
	chat.Repository
	Ping(ctx context.Context) error
}

// cachedRecordStore routes prompt reads and writes through an LRU cache.
type cachedRecordStore struct {
	RecordStore
	prompts *recordrepo.PromptCache
}

func (s *cachedRecordStore) CreatePrompt(ctx context.Context, record *prompt.Record) error {
	return s.prompts.CreatePrompt(ctx, record)
}

func (s *cachedRecordStore) GetPrompt(ctx context.Context, id string) (*prompt.Record, error) {
	return s.prompts.GetPrompt(ctx, id)
}

func withPromptCache(store RecordStore, size int) (RecordStore, error) {
	if size <= 0 {
		return store, nil
	}
	cache, err := recordrepo.NewPromptCache(store, size)
	if err != nil {
		return nil, err
	}
	return &cachedRecordStore{RecordStore: store, prompts: cache}, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

func provideRecordStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (RecordStore, error) {
	if cfg.UsesMemoryStore() {
		log.Warn().Msg("RECORD_STORE=memory; records are lost on restart")
		return withPromptCache(recordrepo.NewMemoryStore(), cfg.PromptCacheSize)
	}

	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return withPromptCache(recordrepo.NewPostgresStore(db), cfg.PromptCacheSize)
}

func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.Connect(database.Config{
		DSN:             cfg.DBPostgresqlWriteDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
}

func provideBlobService(cfg *config.Config, store blob.ObjectStore, log zerolog.Logger) *blob.Service {
	return blob.NewService(store, cfg.StoragePublicBaseURL, cfg.StorageDefaultExt, log)
}

func provideTemplates(cfg *config.Config) (*prompt.Templates, error) {
	return prompt.LoadTemplates(cfg.PromptTemplatesPath)
}

func provideChatClient(cfg *config.Config) *inference.ChatCompletionClient {
	return inference.NewChatCompletionClient(httpclients.NewClient("chat", cfg.ChatTimeout), "chat", cfg.ChatAPIBaseURL, cfg.ChatAPIKey)
}

func provideImageClient(cfg *config.Config) *inference.ImageGenerationClient {
	return inference.NewImageGenerationClient(httpclients.NewClient("image", cfg.ImageTimeout), cfg.ImageAPIURL, cfg.ImageAPIKey)
}

func provideDownloader(cfg *config.Config) *inference.Downloader {
	return inference.NewDownloader(httpclients.NewClient("image-download", cfg.ImageDownloadTimeout), cfg.MaxImageBytes)
}

func provideChatService(cfg *config.Config, client *inference.ChatCompletionClient, store RecordStore, log zerolog.Logger) *chat.Service {
	return chat.NewService(client, store, cfg.ChatModel, log)
}

func providePromptService(cfg *config.Config, client *inference.ChatCompletionClient, store RecordStore, chats *chat.Service, templates *prompt.Templates, log zerolog.Logger) *prompt.Service {
	redact := sanitize.NewText(sanitize.PIILevel(cfg.LogPIILevel), cfg.ServiceName)
	return prompt.NewService(client, store, chats, templates, cfg.ChatModel, redact, log)
}

func provideImageService(
	cfg *config.Config,
	prompts *prompt.Service,
	client *inference.ImageGenerationClient,
	downloader *inference.Downloader,
	blobs *blob.Service,
	store RecordStore,
	log zerolog.Logger,
) *image.Service {
	settings := image.Settings{
		Model:       cfg.ImageModel,
		Size:        cfg.ImageSize,
		Style:       cfg.ImageStyle,
		Quality:     cfg.ImageQuality,
		N:           cfg.ImageCount,
		OriginalExt: cfg.StorageDefaultExt,
	}
	return image.NewService(prompts, client, downloader, blobs, store, settings, cfg.MaxUploadBytes, log)
}

func provideHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	provider *handlers.Provider,
	validator *auth.Validator,
	blobs *blob.Service,
	objects blob.ObjectStore,
	store RecordStore,
) *httpserver.HttpServer {
	opts := httpserver.Options{
		Readiness: map[string]httpserver.HealthCheck{
			"storage": blobs.Health,
			"records": store.Ping,
		},
	}
	if local, ok := objects.(*storage.LocalStorage); ok {
		opts.FilesDir = local.BasePath()
	}
	return httpserver.New(cfg, log, provider, validator, opts)
}
