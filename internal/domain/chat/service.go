package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/jsonvalue"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/recordid"
)

var allowedRoles = []string{llm.RoleSystem, llm.RoleUser, llm.RoleAssistant}

// Service runs chat turns and stores their envelopes.
type Service struct {
	provider     llm.ChatProvider
	repo         Repository
	defaultModel string
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(provider llm.ChatProvider, repo Repository, defaultModel string, log zerolog.Logger) *Service {
	return &Service{
		provider:     provider,
		repo:         repo,
		defaultModel: defaultModel,
		log:          log.With().Str("component", "chat-service").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Complete sends the conversation to the chat backend. The envelope is
// stored whether or not the call succeeds.
func (s *Service) Complete(ctx context.Context, username string, req Request) (*Reply, error) {
	if len(req.Messages) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "messages are required", nil, "")
	}
	messages := make([]llm.ChatMessage, 0, len(req.Messages))
	for i, msg := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if !lo.Contains(allowedRoles, role) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("messages[%d]: unsupported role %q", i, msg.Role), nil, "")
		}
		if strings.TrimSpace(msg.Content) == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("messages[%d]: content is required", i), nil, "")
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: msg.Content})
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.defaultModel
	}
	chatReq := llm.ChatRequest{Model: model, Messages: messages, User: username}

	resp, err := s.provider.CreateChatCompletion(ctx, chatReq)
	recordID := s.record(ctx, username, chatReq, resp, err)
	if err != nil {
		var providerErr *llm.ProviderError
		switch {
		case errors.As(err, &providerErr):
			return nil, fmt.Errorf("chat completion: %w", err)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "chat completion canceled")
		default:
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "chat completion failed", err, "")
		}
	}

	return &Reply{
		ID:      recordID,
		Model:   resp.Model,
		Message: Message{Role: llm.RoleAssistant, Content: resp.Content},
	}, nil
}

// RecordExchange stores the envelope of a chat call made by another service.
func (s *Service) RecordExchange(ctx context.Context, username string, req llm.ChatRequest, resp *llm.ChatResponse, callErr error) {
	s.record(ctx, username, req, resp, callErr)
}

// record stores the envelope and returns its id. Persistence failures are
// logged only; they never fail the chat turn.
func (s *Service) record(ctx context.Context, username string, req llm.ChatRequest, resp *llm.ChatResponse, callErr error) string {
	record := &Record{
		ID:           recordid.New(recordid.PrefixChat),
		Username:     username,
		TimestampUTC: s.now(),
	}

	if v, err := jsonvalue.FromAny(req); err == nil {
		record.Request = v
	}
	switch {
	case resp != nil && len(resp.Raw) > 0:
		record.Response = jsonvalue.FromRaw(resp.Raw)
	case resp != nil:
		if v, err := jsonvalue.FromAny(resp); err == nil {
			record.Response = v
		}
	}
	if callErr != nil {
		record.Error = callErr.Error()
		var providerErr *llm.ProviderError
		if errors.As(callErr, &providerErr) {
			record.Response = jsonvalue.FromRaw(providerErr.Body)
		}
	}

	// The envelope must be written even when the caller has gone away.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.CreateChat(writeCtx, record); err != nil {
		s.log.Error().Err(err).Str("chat_id", record.ID).Msg("failed to store chat record")
	}
	return record.ID
}
