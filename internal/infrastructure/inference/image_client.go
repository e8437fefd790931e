package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// ImageGenerationClient posts prompts to an images/generations endpoint and
// hands back the unparsed answer.
type ImageGenerationClient struct {
	client *resty.Client
	url    string
	apiKey string
}

var _ llm.ImageProvider = (*ImageGenerationClient)(nil)

func NewImageGenerationClient(client *resty.Client, url, apiKey string) *ImageGenerationClient {
	return &ImageGenerationClient{
		client: client,
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (c *ImageGenerationClient) GenerateImage(ctx context.Context, req llm.ImageGenerationRequest) (*llm.ImageGenerationResult, error) {
	body := openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              req.N,
		Size:           req.Size,
		Quality:        req.Quality,
		Style:          req.Style,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	}

	r := c.client.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetDoNotParseResponse(true)
	if c.apiKey != "" {
		r.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := r.Post(c.url)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "failed to read image response", err, "0c4f8e2b-93a7-4d15-b6e0-7a1d5c3f9e84")
	}

	return &llm.ImageGenerationResult{
		Raw:         raw,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		IsError:     resp.IsError(),
	}, nil
}
