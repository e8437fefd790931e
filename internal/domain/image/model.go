package image

import (
	"context"
	"time"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/jsonvalue"
)

// Data holds the public URLs of a stored image and its thumbnails. It is
// empty for failed generations.
type Data struct {
	URL       string `json:"url"`
	SmallURL  string `json:"smallUrl"`
	MediumURL string `json:"mediumUrl"`
	LargeURL  string `json:"largeUrl"`
}

// IsEmpty reports whether no URL is set.
func (d Data) IsEmpty() bool {
	return d == Data{}
}

// PromptRef points back at the prompt record an image was generated from.
type PromptRef struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// Record is one generation attempt. Failed attempts are stored too, with
// HasError set and Data empty.
type Record struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Timestamp       time.Time       `json:"timestamp"`
	RequestPayload  jsonvalue.Value `json:"requestPayload"`
	ResponsePayload jsonvalue.Value `json:"responsePayload"`
	Prompt          PromptRef       `json:"imagePrompt"`
	HasError        bool            `json:"hasError"`
	Data            Data            `json:"imageData"`
}

// Filter selects image records by equality on owner and error flag.
type Filter struct {
	Username string
	HasError *bool
}

// Repository persists image records.
type Repository interface {
	CreateImage(ctx context.Context, record *Record) error
	ListImages(ctx context.Context, filter Filter) ([]*Record, error)
}

// UserImage is the result of a user upload.
type UserImage struct {
	ID              string `json:"-"`
	URL             string `json:"url"`
	ThumbnailSmall  string `json:"thumbnailSmall"`
	ThumbnailMedium string `json:"thumbnailMedium"`
	ThumbnailLarge  string `json:"thumbnailLarge"`
}

// Settings are the fixed image-generation parameters.
type Settings struct {
	Model       string
	Size        string
	Style       string
	Quality     string
	N           int
	OriginalExt string
}
