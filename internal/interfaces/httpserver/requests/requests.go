package requests

import (
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
)

// ImagePromptRequest asks for an improved image prompt.
type ImagePromptRequest struct {
	Prompt         string `json:"prompt" validate:"notblank"`
	ConversationID string `json:"conversationId,omitempty"`
	Mode           string `json:"mode,omitempty" enums:"long,short"`
}

// RevisionTags lists the tags a revision must add or avoid.
type RevisionTags struct {
	ToInclude []string `json:"toInclude"`
	ToExclude []string `json:"toExclude"`
}

// ImagePromptRevisionRequest asks for a constrained rewrite of a prompt.
type ImagePromptRevisionRequest struct {
	Prompt         string       `json:"prompt" validate:"notblank"`
	RevisionTags   RevisionTags `json:"revisionTags"`
	PointOfView    string       `json:"pointOfView"`
	ImageStyle     string       `json:"imageStyle"`
	ConversationID string       `json:"conversationId,omitempty"`
}

func (r *ImagePromptRevisionRequest) ToDomain() prompt.RevisionRequest {
	return prompt.RevisionRequest{
		Prompt:         r.Prompt,
		TagsToInclude:  r.RevisionTags.ToInclude,
		TagsToExclude:  r.RevisionTags.ToExclude,
		PointOfView:    r.PointOfView,
		ImageStyle:     r.ImageStyle,
		ConversationID: r.ConversationID,
	}
}

// ChatRequest is one chat turn.
type ChatRequest struct {
	Model    string         `json:"model,omitempty"`
	Messages []chat.Message `json:"messages" validate:"min=1"`
}

func (r *ChatRequest) ToDomain() chat.Request {
	return chat.Request{Model: r.Model, Messages: r.Messages}
}
