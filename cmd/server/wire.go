//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/auth"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/storage"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/handlers"
)

var clientSet = wire.NewSet(
	provideChatClient,
	provideImageClient,
	provideDownloader,
)

var serviceSet = wire.NewSet(
	provideRecordStore,
	storage.New,
	provideBlobService,
	provideTemplates,
	provideChatService,
	providePromptService,
	provideImageService,
)

// BuildApplication assembles the assistant API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		newLogger,
		auth.NewValidator,
		clientSet,
		serviceSet,
		handlers.NewProvider,
		provideHTTPServer,
		NewApplication,
	)
	return nil, nil
}
