package responses

import (
	"time"

	"github.com/samber/lo"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
)

// GeneratedImageResponse is returned after a successful generation.
type GeneratedImageResponse struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	ImageData   image.Data      `json:"imageData"`
	ImagePrompt image.PromptRef `json:"imagePrompt"`
}

func NewGeneratedImageResponse(r *image.Record) GeneratedImageResponse {
	return GeneratedImageResponse{
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		ImageData:   r.Data,
		ImagePrompt: r.Prompt,
	}
}

// ImageListItem is one entry of the user's gallery.
type ImageListItem struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Prompt        string    `json:"prompt"`
	URL           string    `json:"url"`
	SmallURL      string    `json:"smallUrl"`
	MediumURL     string    `json:"mediumUrl"`
	LargeURL      string    `json:"largeUrl"`
	ImagePromptID string    `json:"imagePromptId"`
}

// ImageListResponse wraps the gallery.
type ImageListResponse struct {
	Images []ImageListItem `json:"images"`
}

func NewImageListResponse(records []*image.Record) ImageListResponse {
	return ImageListResponse{
		Images: lo.Map(records, func(r *image.Record, _ int) ImageListItem {
			return ImageListItem{
				ID:            r.ID,
				Timestamp:     r.Timestamp,
				Prompt:        r.Prompt.Prompt,
				URL:           r.Data.URL,
				SmallURL:      r.Data.SmallURL,
				MediumURL:     r.Data.MediumURL,
				LargeURL:      r.Data.LargeURL,
				ImagePromptID: r.Prompt.ID,
			}
		}),
	}
}

// RevisionResponse is returned by PUT /imagePrompt.
type RevisionResponse struct {
	ID               string `json:"id"`
	ConversationID   string `json:"conversationId"`
	RevisedPrompt    string `json:"revisedPrompt"`
	SummaryOfChanges string `json:"summaryOfChanges"`
}
