package image

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/thumbnail"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/metrics"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/observability"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/jsonvalue"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/recordid"
)

const cleanupTimeout = 30 * time.Second

var allowedUploadMIMEs = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
}

// PromptSource loads prompt records owned by a user.
type PromptSource interface {
	Get(ctx context.Context, username, id string) (*prompt.Record, error)
}

// BlobStore uploads and deletes named blobs.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
	Delete(ctx context.Context, filenames []string) error
}

// Service runs the image pipeline and user uploads.
type Service struct {
	prompts        PromptSource
	provider       llm.ImageProvider
	fetcher        llm.ImageFetcher
	blobs          BlobStore
	repo           Repository
	settings       Settings
	maxUploadBytes int64
	log            zerolog.Logger
	now            func() time.Time
}

func NewService(
	prompts PromptSource,
	provider llm.ImageProvider,
	fetcher llm.ImageFetcher,
	blobs BlobStore,
	repo Repository,
	settings Settings,
	maxUploadBytes int64,
	log zerolog.Logger,
) *Service {
	if settings.OriginalExt == "" {
		settings.OriginalExt = ".png"
	}
	return &Service{
		prompts:        prompts,
		provider:       provider,
		fetcher:        fetcher,
		blobs:          blobs,
		repo:           repo,
		settings:       settings,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("component", "image-service").Logger(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// GenerateFromPrompt generates an image for a stored prompt, stores the
// original plus thumbnails and persists the attempt. Only the first image URL
// of the provider answer is used. Blobs written before a later failure are
// left in place.
func (s *Service) GenerateFromPrompt(ctx context.Context, username, promptID string) (*Record, error) {
	ctx, span := observability.StartSpan(ctx, "ImageService.GenerateFromPrompt")
	defer span.End()

	source, err := s.prompts.Get(ctx, username, promptID)
	if err != nil {
		return nil, err
	}

	req := llm.ImageGenerationRequest{
		Model:   s.settings.Model,
		Prompt:  source.EffectivePrompt(),
		N:       s.settings.N,
		Size:    s.settings.Size,
		Quality: s.settings.Quality,
		Style:   s.settings.Style,
	}
	observability.AddSpanAttributes(ctx,
		attribute.String("prompt_id", source.ID),
		attribute.String("model", req.Model),
		attribute.String("size", req.Size),
	)

	attempt := &Record{
		Username: username,
		Prompt:   PromptRef{ID: source.ID, Prompt: req.Prompt},
	}
	if payload, err := jsonvalue.FromAny(req); err == nil {
		attempt.RequestPayload = payload
	}

	stageCtx, finish := observability.StartStage(ctx, "generate", attribute.String("model", req.Model))
	result, err := s.provider.GenerateImage(stageCtx, req)
	finish(err)
	if err != nil {
		attempt.ResponsePayload = jsonvalue.String(err.Error())
		s.persistFailure(ctx, attempt, "provider_unreachable")
		observability.RecordError(ctx, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "image generation canceled")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "image generation request failed", err, "")
	}

	attempt.ResponsePayload = jsonvalue.FromRaw(result.Raw)
	if result.IsError {
		s.persistFailure(ctx, attempt, "provider_error")
		providerErr := &llm.ProviderError{
			Provider:    "image",
			StatusCode:  result.StatusCode,
			Body:        result.Raw,
			ContentType: result.ContentType,
		}
		observability.RecordError(ctx, providerErr)
		return nil, providerErr
	}

	imageURL, ok := firstImageURL(attempt.ResponsePayload)
	if !ok {
		s.persistFailure(ctx, attempt, "no_image_url")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"image provider response did not contain an image url", nil, "")
	}

	stageCtx, finish = observability.StartStage(ctx, "download")
	original, _, err := s.fetcher.Fetch(stageCtx, imageURL)
	finish(err)
	if err != nil {
		s.persistFailure(ctx, attempt, "download_failed")
		return nil, s.stageError(ctx, err, platformerrors.ErrorTypeExternal, "failed to download generated image")
	}

	id := recordid.New(recordid.PrefixImage)
	_, finish = observability.StartStage(ctx, "thumbnail", attribute.Int("source_bytes", len(original)))
	thumbs, err := thumbnail.Make(original, thumbnail.All)
	finish(err)
	if err != nil {
		s.persistFailure(ctx, attempt, "thumbnail_failed")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"generated image could not be decoded", err, "")
	}

	stageCtx, finish = observability.StartStage(ctx, "upload", attribute.String("image_id", id))
	data, _, err := s.uploadSet(stageCtx, id, original, s.settings.OriginalExt, thumbs)
	finish(err)
	if err != nil {
		s.persistFailure(ctx, attempt, "upload_failed")
		return nil, s.stageError(ctx, err, platformerrors.ErrorTypeStorage, "failed to store generated image")
	}

	attempt.ID = id
	attempt.Timestamp = s.now()
	attempt.Data = data
	if err := s.repo.CreateImage(ctx, attempt); err != nil {
		metrics.RecordImageGeneration("persist_failed")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store image record")
	}

	metrics.RecordImageGeneration("success")
	s.log.Info().
		Str("image_id", id).
		Str("prompt_id", source.ID).
		Str("username", username).
		Msg("image generated")
	return attempt, nil
}

// List returns the user's successful generations, newest first.
func (s *Service) List(ctx context.Context, username string) ([]*Record, error) {
	records, err := s.repo.ListImages(ctx, Filter{Username: username, HasError: lo.ToPtr(false)})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list images")
	}
	visible := lo.Filter(records, func(r *Record, _ int) bool {
		return r.Username == username && !r.HasError
	})
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Timestamp.After(visible[j].Timestamp)
	})
	return visible, nil
}

// UploadUserImage stores a user supplied image and its thumbnails. When the
// request is canceled or any upload fails, blobs already written are deleted
// before the error is returned.
func (s *Service) UploadUserImage(ctx context.Context, username string, data []byte) (*UserImage, error) {
	ctx, span := observability.StartSpan(ctx, "ImageService.UploadUserImage")
	defer span.End()

	if len(data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "image file is empty", nil, "")
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("image exceeds the %d byte limit", s.maxUploadBytes), nil, "")
	}

	mime := mimetype.Detect(data)
	if _, ok := allowedUploadMIMEs[mime.String()]; !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported image type %s", mime.String()), nil, "")
	}

	thumbs, err := thumbnail.Make(data, thumbnail.All)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "image could not be decoded", err, "")
	}

	id := recordid.New(recordid.PrefixUserImage)
	urls, written, err := s.uploadSet(ctx, id, data, mime.Extension(), thumbs)
	if err != nil {
		s.cleanup(ctx, written)
		return nil, s.stageError(ctx, err, platformerrors.ErrorTypeStorage, "failed to store uploaded image")
	}

	s.log.Info().Str("upload_id", id).Str("username", username).Str("content_type", mime.String()).Msg("user image stored")
	return &UserImage{
		ID:              id,
		URL:             urls.URL,
		ThumbnailSmall:  urls.SmallURL,
		ThumbnailMedium: urls.MediumURL,
		ThumbnailLarge:  urls.LargeURL,
	}, nil
}

// uploadSet writes the original and one blob per thumbnail size, in order,
// stopping at the first failure. It returns the names written so far.
func (s *Service) uploadSet(ctx context.Context, id string, original []byte, ext string, thumbs map[thumbnail.Size][]byte) (Data, []string, error) {
	var data Data
	var written []string

	upload := func(name, kind string, body []byte) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		url, err := s.blobs.Upload(ctx, body, name)
		if err != nil {
			return "", err
		}
		written = append(written, name)
		metrics.RecordUpload(kind, len(body))
		return url, nil
	}

	url, err := upload(id+ext, "original", original)
	if err != nil {
		return data, written, err
	}
	data.URL = url

	for _, size := range thumbnail.All {
		url, err := upload(id+size.Suffix(), string(size), thumbs[size])
		if err != nil {
			return data, written, err
		}
		switch size {
		case thumbnail.Small:
			data.SmallURL = url
		case thumbnail.Medium:
			data.MediumURL = url
		case thumbnail.Large:
			data.LargeURL = url
		}
	}
	return data, written, nil
}

func (s *Service) cleanup(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}
	observability.AddSpanEvent(ctx, "blob_cleanup", attribute.Int("blobs", len(names)))
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.blobs.Delete(cleanupCtx, names); err != nil {
		s.log.Warn().Err(err).Strs("blobs", names).Msg("failed to remove partially uploaded blobs")
		return
	}
	s.log.Info().Strs("blobs", names).Msg("removed partially uploaded blobs")
}

// persistFailure stores an error-flagged attempt. The write is detached from
// request cancellation.
func (s *Service) persistFailure(ctx context.Context, attempt *Record, outcome string) {
	metrics.RecordImageGeneration(outcome)
	attempt.ID = recordid.New(recordid.PrefixImage)
	attempt.Timestamp = s.now()
	attempt.HasError = true
	attempt.Data = Data{}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.repo.CreateImage(writeCtx, attempt); err != nil {
		s.log.Error().Err(err).Str("image_id", attempt.ID).Str("outcome", outcome).Msg("failed to store failed image attempt")
	}
}

func (s *Service) stageError(ctx context.Context, err error, errType platformerrors.ErrorType, message string) error {
	observability.RecordError(ctx, err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, message)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, errType, message, err, "")
}

// firstImageURL returns the first non-empty data[].url of an image response.
func firstImageURL(payload jsonvalue.Value) (string, bool) {
	data, ok := payload.Get("data")
	if !ok || !data.IsArray() {
		return "", false
	}
	for _, item := range data.Items() {
		url, ok := item.Get("url")
		if !ok {
			continue
		}
		if value := strings.TrimSpace(url.Str()); value != "" {
			return value, true
		}
	}
	return "", false
}
