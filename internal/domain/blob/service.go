// Package blob uploads and deletes image files in the configured object store
// and derives their public URLs.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// ErrObjectNotFound is returned by stores for keys that do not exist.
var ErrObjectNotFound = errors.New("blob: object not found")

// ObjectStore is a container-scoped key/value byte store.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

// Service names blobs and builds their URLs. Keys are always lower-cased so
// the URL and the stored key agree.
type Service struct {
	store      ObjectStore
	baseURL    string
	defaultExt string
	log        zerolog.Logger
}

func NewService(store ObjectStore, baseURL, defaultExt string, log zerolog.Logger) *Service {
	if defaultExt != "" && !strings.HasPrefix(defaultExt, ".") {
		defaultExt = "." + defaultExt
	}
	return &Service{
		store:      store,
		baseURL:    baseURL,
		defaultExt: strings.ToLower(defaultExt),
		log:        log.With().Str("component", "blob-service").Logger(),
	}
}

// Key returns the stored name for filename: lower-cased, with the default
// extension when filename has none.
func (s *Service) Key(filename string) string {
	name := strings.ToLower(strings.TrimSpace(filename))
	if path.Ext(name) == "" {
		name += s.defaultExt
	}
	return name
}

// URLFor returns the public URL of filename.
func (s *Service) URLFor(filename string) string {
	return s.baseURL + s.Key(filename)
}

// Upload stores data under filename and returns its public URL.
func (s *Service) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	key := s.Key(filename)
	if key == "" || key == s.defaultExt {
		return "", fmt.Errorf("blob: empty filename")
	}
	contentType := mimetype.Detect(data).String()
	if err := s.store.Put(ctx, key, bytes.Clone(data), contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int("bytes", len(data)).Str("content_type", contentType).Msg("blob uploaded")
	return s.baseURL + key, nil
}

// Delete removes every filename it is given. Missing blobs are skipped; other
// failures are collected and returned together after all deletes ran.
func (s *Service) Delete(ctx context.Context, filenames []string) error {
	var result *multierror.Error
	for _, filename := range filenames {
		key := s.Key(filename)
		err := s.store.Delete(ctx, key)
		switch {
		case err == nil:
			s.log.Debug().Str("key", key).Msg("blob deleted")
		case errors.Is(err, ErrObjectNotFound):
			s.log.Debug().Str("key", key).Msg("blob already absent")
		default:
			result = multierror.Append(result, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return result.ErrorOrNil()
}

// Health reports whether the backing store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}
