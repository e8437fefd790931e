package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/auth"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// Provider wires HTTP handlers.
type Provider struct {
	Prompt *PromptHandler
	Image  *ImageHandler
	Chat   *ChatHandler
}

func NewProvider(cfg *config.Config, prompts *prompt.Service, images *image.Service, chats *chat.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Prompt: NewPromptHandler(prompts, log),
		Image:  NewImageHandler(cfg, images, log),
		Chat:   NewChatHandler(chats, log),
	}
}

// currentUsername resolves the record owner or aborts with 401.
func currentUsername(c *gin.Context) (string, bool) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Username == "" {
		platformerrors.WriteUnauthorized(c, "authentication required")
		return "", false
	}
	return principal.Username, true
}
