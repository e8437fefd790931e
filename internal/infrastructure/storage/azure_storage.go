package storage

import (
	"context"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azureblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/blob"
)

// AzureStorage stores images in an Azure Blob Storage container.
type AzureStorage struct {
	client    *azblob.Client
	container string
	log       zerolog.Logger
	disabled  bool
}

var _ blob.ObjectStore = (*AzureStorage)(nil)

func NewAzureStorage(cfg *config.Config, log zerolog.Logger) (*AzureStorage, error) {
	logger := log.With().Str("component", "azure-storage").Logger()
	conn := strings.TrimSpace(cfg.AzureConnectionString)
	container := strings.TrimSpace(cfg.AzureContainer)
	if conn == "" || container == "" {
		logger.Warn().Msg("AZURE_STORAGE_CONNECTION_STRING is not set; image uploads will fail until configured")
		return &AzureStorage{log: logger, disabled: true}, nil
	}

	client, err := azblob.NewClientFromConnectionString(conn, nil)
	if err != nil {
		return nil, err
	}
	return &AzureStorage{client: client, container: container, log: logger}, nil
}

func (a *AzureStorage) ensureEnabled() error {
	if a.disabled {
		return errStorageDisabled
	}
	return nil
}

func (a *AzureStorage) Put(ctx context.Context, key string, body []byte, contentType string) (err error) {
	if err := a.ensureEnabled(); err != nil {
		return err
	}
	defer func(started time.Time) { observe("azure", "put", started, err) }(time.Now())

	_, err = a.client.UploadBuffer(ctx, a.container, key, body, &azblob.UploadBufferOptions{
		HTTPHeaders: &azureblob.HTTPHeaders{BlobContentType: &contentType},
	})
	return err
}

func (a *AzureStorage) Delete(ctx context.Context, key string) (err error) {
	if err := a.ensureEnabled(); err != nil {
		return err
	}
	defer func(started time.Time) { observe("azure", "delete", started, err) }(time.Now())

	_, err = a.client.DeleteBlob(ctx, a.container, key, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return blob.ErrObjectNotFound
	}
	return err
}

// Health reads the container properties.
func (a *AzureStorage) Health(ctx context.Context) error {
	if a.disabled {
		return nil
	}
	_, err := a.client.ServiceClient().NewContainerClient(a.container).GetProperties(ctx, nil)
	return err
}
