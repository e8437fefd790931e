package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/recordid"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/sanitize"
)

// ExchangeRecorder persists the request/response envelope of a chat call.
type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, username string, req llm.ChatRequest, resp *llm.ChatResponse, callErr error)
}

// Service generates and revises image prompts through the chat backend.
type Service struct {
	chat      llm.ChatProvider
	repo      Repository
	recorder  ExchangeRecorder
	templates *Templates
	model     string
	redact    *sanitize.Text
	log       zerolog.Logger
	now       func() time.Time
}

// NewService wires the prompt service. recorder may be nil.
func NewService(chat llm.ChatProvider, repo Repository, recorder ExchangeRecorder, templates *Templates, model string, redact *sanitize.Text, log zerolog.Logger) *Service {
	if redact == nil {
		redact = sanitize.NewText(sanitize.PIILevelHashed, "")
	}
	return &Service{
		chat:      chat,
		repo:      repo,
		recorder:  recorder,
		templates: templates,
		model:     model,
		redact:    redact,
		log:       log.With().Str("component", "prompt-service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate improves a user prompt and persists the resulting record.
func (s *Service) Generate(ctx context.Context, username string, req GenerateRequest) (*Record, error) {
	userPrompt := strings.TrimSpace(req.Prompt)
	if userPrompt == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "prompt is required", nil, "")
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeLong
	}

	chatReq := llm.ChatRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: s.templates.Generation(mode)},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		User: username,
	}

	s.log.Debug().
		Str("username", username).
		Str("mode", string(mode)).
		Str("prompt", s.redact.Apply(userPrompt)).
		Msg("generating image prompt")

	reply, err := s.complete(ctx, username, chatReq)
	if err != nil {
		return nil, err
	}

	out := decodeReply[generatedPrompt](reply.Content)
	if strings.TrimSpace(out.ImprovedPrompt) == "" {
		return nil, s.parseError(ctx, "generation", reply)
	}

	pointOfViews := cleanList(out.PointOfViews)
	imageStyles := cleanList(out.ImageStyles)
	record := &Record{
		ID:              recordid.New(recordid.PrefixPrompt),
		Username:        username,
		OriginalPrompt:  userPrompt,
		ImprovedPrompt:  strings.TrimSpace(out.ImprovedPrompt),
		MainDifferences: strings.TrimSpace(out.MainDifferences),
		Tags: Tags{
			Included:    cleanList(out.Tags.Included),
			NotIncluded: cleanList(out.Tags.NotIncluded),
		},
		PointOfView:    lo.FirstOrEmpty(pointOfViews),
		PointOfViews:   pointOfViews,
		ImageStyle:     lo.FirstOrEmpty(imageStyles),
		ImageStyles:    imageStyles,
		ConversationID: conversationOrNew(req.ConversationID),
		Timestamp:      s.now(),
	}

	if err := s.repo.CreatePrompt(ctx, record); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store prompt record")
	}
	return record, nil
}

// Revise rewrites a prompt under include/exclude constraints. Every revision
// is stored as a new record.
func (s *Service) Revise(ctx context.Context, username string, req RevisionRequest) (*Revision, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "prompt is required", nil, "")
	}
	req.TagsToInclude = cleanList(req.TagsToInclude)
	req.TagsToExclude = cleanList(req.TagsToExclude)
	req.PointOfView = strings.TrimSpace(req.PointOfView)
	req.ImageStyle = strings.TrimSpace(req.ImageStyle)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to encode revision request")
	}

	chatReq := llm.ChatRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: s.templates.Revision()},
			{Role: llm.RoleUser, Content: string(payload)},
		},
		User: username,
	}

	s.log.Debug().
		Str("username", username).
		Int("include", len(req.TagsToInclude)).
		Int("exclude", len(req.TagsToExclude)).
		Str("prompt", s.redact.Apply(req.Prompt)).
		Msg("revising image prompt")

	reply, err := s.complete(ctx, username, chatReq)
	if err != nil {
		return nil, err
	}

	out := decodeReply[RevisionResult](reply.Content)
	out.RevisedPrompt = strings.TrimSpace(out.RevisedPrompt)
	out.SummaryOfChanges = strings.TrimSpace(out.SummaryOfChanges)
	if out.RevisedPrompt == "" {
		return nil, s.parseError(ctx, "revision", reply)
	}

	record := &Record{
		ID:              recordid.New(recordid.PrefixPrompt),
		Username:        username,
		OriginalPrompt:  req.Prompt,
		ImprovedPrompt:  out.RevisedPrompt,
		MainDifferences: out.SummaryOfChanges,
		Tags: Tags{
			Included:    req.TagsToInclude,
			NotIncluded: req.TagsToExclude,
		},
		PointOfView:    req.PointOfView,
		PointOfViews:   cleanList([]string{req.PointOfView}),
		ImageStyle:     req.ImageStyle,
		ImageStyles:    cleanList([]string{req.ImageStyle}),
		ConversationID: conversationOrNew(req.ConversationID),
		Timestamp:      s.now(),
	}
	if err := s.repo.CreatePrompt(ctx, record); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store revised prompt")
	}

	return &Revision{ID: record.ID, ConversationID: record.ConversationID, RevisionResult: out}, nil
}

// Get returns a prompt record owned by username.
func (s *Service) Get(ctx context.Context, username, id string) (*Record, error) {
	record, err := s.repo.GetPrompt(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load prompt record")
	}
	if record.Username != username {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "prompt record not found", nil, "")
	}
	return record, nil
}

func (s *Service) complete(ctx context.Context, username string, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := s.chat.CreateChatCompletion(ctx, req)
	if s.recorder != nil {
		s.recorder.RecordExchange(ctx, username, req, resp, err)
	}
	if err == nil {
		return resp, nil
	}

	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		s.log.Warn().Int("status", providerErr.StatusCode).Msg("chat backend returned an error")
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "chat completion canceled")
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "chat completion failed", err, "")
}

func (s *Service) parseError(ctx context.Context, kind string, reply *llm.ChatResponse) error {
	s.log.Warn().
		Str("kind", kind).
		Int("reply_length", len(reply.Content)).
		Msg("assistant reply did not contain the expected JSON object")
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeParse,
		fmt.Sprintf("assistant %s reply could not be parsed", kind), nil, "")
}

// cleanList trims entries and drops empty and duplicate ones. The result is
// never nil so it encodes as [].
func cleanList(items []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(items, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})))
}

func conversationOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return recordid.New(recordid.PrefixConversation)
}
