package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/blob"
)

// GCSStorage stores images in a Google Cloud Storage bucket.
type GCSStorage struct {
	bucket   *gcs.BucketHandle
	client   *gcs.Client
	log      zerolog.Logger
	disabled bool
}

var _ blob.ObjectStore = (*GCSStorage)(nil)

func NewGCSStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*GCSStorage, error) {
	logger := log.With().Str("component", "gcs-storage").Logger()
	name := strings.TrimSpace(cfg.GCSBucket)
	if name == "" {
		logger.Warn().Msg("GCS_BUCKET is not set; image uploads will fail until configured")
		return &GCSStorage{log: logger, disabled: true}, nil
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.GCSCredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSStorage{
		bucket: client.Bucket(name),
		client: client,
		log:    logger,
	}, nil
}

func (g *GCSStorage) ensureEnabled() error {
	if g.disabled {
		return errStorageDisabled
	}
	return nil
}

func (g *GCSStorage) Put(ctx context.Context, key string, body []byte, contentType string) (err error) {
	if err := g.ensureEnabled(); err != nil {
		return err
	}
	defer func(started time.Time) { observe("gcs", "put", started, err) }(time.Now())

	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (g *GCSStorage) Delete(ctx context.Context, key string) (err error) {
	if err := g.ensureEnabled(); err != nil {
		return err
	}
	defer func(started time.Time) { observe("gcs", "delete", started, err) }(time.Now())

	err = g.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return blob.ErrObjectNotFound
	}
	return err
}

// Health reads the bucket attributes.
func (g *GCSStorage) Health(ctx context.Context) error {
	if g.disabled {
		return nil
	}
	_, err := g.bucket.Attrs(ctx)
	return err
}

// Close releases the underlying client.
func (g *GCSStorage) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
