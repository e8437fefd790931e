package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// ChatCompletionClient talks to an OpenAI compatible /chat/completions
// endpoint.
type ChatCompletionClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	name    string
}

var _ llm.ChatProvider = (*ChatCompletionClient)(nil)

func NewChatCompletionClient(client *resty.Client, name, baseURL, apiKey string) *ChatCompletionClient {
	return &ChatCompletionClient{
		client:  client,
		baseURL: normalizeBaseURL(baseURL),
		apiKey:  strings.TrimSpace(apiKey),
		name:    name,
	}
}

// CreateChatCompletion sends one non-streaming completion. The raw response
// body is kept on the result so callers can persist it unchanged.
func (c *ChatCompletionClient) CreateChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.prepareRequest(ctx).
		SetBody(toOpenAIRequest(req)).
		SetDoNotParseResponse(true).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		return nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "failed to read chat response", err, "5b0d6c1e-2f3a-4be9-9d1f-0c9a61d3f7a2")
	}
	if resp.IsError() {
		return nil, &llm.ProviderError{
			Provider:    c.name,
			StatusCode:  resp.StatusCode(),
			Body:        body,
			ContentType: resp.Header().Get("Content-Type"),
		}
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "chat response is not valid JSON", err, "e7c1a9f4-61d0-4c3b-8f52-3a9d0b6e2c18")
	}

	out := &llm.ChatResponse{
		ID:    completion.ID,
		Model: completion.Model,
		Raw:   body,
	}
	if len(completion.Choices) > 0 {
		out.Content = completion.Choices[0].Message.Content
		out.FinishReason = string(completion.Choices[0].FinishReason)
	}
	return out, nil
}

func toOpenAIRequest(req llm.ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	out := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		User:     req.User,
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	return out
}

func (c *ChatCompletionClient) prepareRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if c.apiKey != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	return req
}

func (c *ChatCompletionClient) endpoint(path string) string {
	if path == "" {
		return c.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if c.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func readBody(resp *resty.Response) ([]byte, error) {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, nil
	}
	defer resp.RawResponse.Body.Close()
	return io.ReadAll(resp.RawResponse.Body)
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimSpace(base)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed
}
