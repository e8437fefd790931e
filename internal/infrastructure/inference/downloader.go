package inference

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"resty.dev/v3"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// Downloader fetches generated images. Bodies larger than maxBytes and
// payloads that are not images are rejected.
type Downloader struct {
	client   *resty.Client
	maxBytes int64
}

var _ llm.ImageFetcher = (*Downloader)(nil)

func NewDownloader(client *resty.Client, maxBytes int64) *Downloader {
	return &Downloader{client: client, maxBytes: maxBytes}
}

func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := d.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, "", err
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "empty image download response", nil, "9e2d4a61-c7b3-4f08-a5d2-1b6e8f3c0d97")
	}
	defer resp.RawResponse.Body.Close()

	if resp.IsError() {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("image download returned status %d", resp.StatusCode()), nil, "3a7f1c0e-5d62-4b9a-8e14-c2f6d0b9a735")
	}

	reader := io.Reader(resp.RawResponse.Body)
	if d.maxBytes > 0 {
		reader = io.LimitReader(reader, d.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", err
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("image exceeds %d bytes", d.maxBytes), nil, "f4b8e2d1-0a93-47c6-9b5e-6d1c3a8f2e70")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("downloaded payload is %s, not an image", mt.String()), nil, "c1d9f3a7-8e24-4b60-a5f2-0e7b3d6c9a18")
	}
	return data, mt.String(), nil
}
