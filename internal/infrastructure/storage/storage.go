package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/blob"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/metrics"
)

var errStorageDisabled = errors.New("image storage backend is not configured")

// New builds the object store selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (blob.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return NewS3Storage(ctx, cfg, log)
	case config.StorageGCS:
		return NewGCSStorage(ctx, cfg, log)
	case config.StorageAzure:
		return NewAzureStorage(cfg, log)
	case config.StorageLocal, "":
		return NewLocalStorage(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func observe(backend, operation string, started time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, blob.ErrObjectNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordStorageOperation(backend, operation, status, time.Since(started).Seconds())
}
