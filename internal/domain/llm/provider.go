// Package llm defines the ports to the chat-completion and image-generation
// backends. Implementations live in infrastructure/inference.
package llm

import (
	"context"
	"fmt"
)

// Chat roles accepted by the chat backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	User        string        `json:"user,omitempty"`
}

// ChatResponse carries the first choice of a completion plus the raw body.
type ChatResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finishReason,omitempty"`
	Raw          []byte `json:"-"`
}

// ChatProvider sends chat completions. Non-2xx responses are returned as
// *ProviderError.
type ChatProvider interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ImageGenerationRequest represents an OpenAI-compatible image generation request.
type ImageGenerationRequest struct {
	// Model specifies the image generation model (e.g. "dall-e-3").
	Model string `json:"model,omitempty"`

	// Prompt is the text description of the desired image.
	Prompt string `json:"prompt"`

	// N is the number of images to generate.
	N int `json:"n,omitempty"`

	// Size specifies the dimensions (e.g. "1024x1024").
	Size string `json:"size,omitempty"`

	// Quality determines image quality ("standard" or "hd").
	Quality string `json:"quality,omitempty"`

	// Style influences the visual aesthetic ("vivid" or "natural").
	Style string `json:"style,omitempty"`
}

// ImageGenerationResult is the unparsed provider answer. IsError is derived
// from the HTTP status only.
type ImageGenerationResult struct {
	Raw         []byte
	StatusCode  int
	ContentType string
	IsError     bool
}

// ImageProvider calls the image generation endpoint. Transport failures are
// returned as errors; HTTP error statuses are reported through the result.
type ImageProvider interface {
	GenerateImage(ctx context.Context, req ImageGenerationRequest) (*ImageGenerationResult, error)
}

// ImageFetcher downloads a generated image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// ProviderError is an upstream non-2xx answer. Handlers relay StatusCode and
// Body to the caller unchanged.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider returned status %d", e.Provider, e.StatusCode)
}
