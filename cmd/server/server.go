package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/auth"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/database"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/observability"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/storage"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/handlers"
)

// @title Assistant API
// @version 1.0
// @description Image prompt generation, image generation and chat service
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assistant-api",
		Short: "Assistant API - image prompts, image generation and chat",
		Long: `assistant-api serves the image prompt, image generation, upload and chat
endpoints. Configuration is read from the environment and from .env files.

Examples:
  assistant-api            # same as "assistant-api serve"
  assistant-api serve
  assistant-api migrate    # apply the record store schema and exit`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema for prompt, image and chat records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context())
		},
	})

	return rootCmd
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, log, nil
}

func runMigrate(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		log.Info().Msg("RECORD_STORE=memory; nothing to migrate")
		return nil
	}

	db, err := connectDatabase(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("record store schema is up to date")
	return nil
}

func runServe(parent context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	records, err := provideRecordStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize record store: %w", err)
	}

	objects, err := storage.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	blobs := provideBlobService(cfg, objects, log)

	templates, err := provideTemplates(cfg)
	if err != nil {
		return fmt.Errorf("load prompt templates: %w", err)
	}

	validator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}
	defer validator.Close()

	chatClient := provideChatClient(cfg)
	chatService := provideChatService(cfg, chatClient, records, log)
	promptService := providePromptService(cfg, chatClient, records, chatService, templates, log)
	imageService := provideImageService(cfg, promptService, provideImageClient(cfg), provideDownloader(cfg), blobs, records, log)

	provider := handlers.NewProvider(cfg, promptService, imageService, chatService, log)
	httpServer := provideHTTPServer(cfg, log, provider, validator, blobs, objects, records)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return err
	}

	log.Info().Msg("application exited cleanly")
	return nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
