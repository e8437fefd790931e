package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/requests"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/responses"
)

// ChatHandler exposes single chat turns.
type ChatHandler struct {
	service *chat.Service
	log     zerolog.Logger
}

func NewChatHandler(service *chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("component", "chat-handler").Logger(),
	}
}

// Complete godoc
// @Summary      Chat completion
// @Description  Sends the messages to the chat model and stores the exchange.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      requests.ChatRequest  true  "Chat turn"
// @Success      200      {object}  chat.Reply
// @Failure      400      {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /chat [post]
func (h *ChatHandler) Complete(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "invalid request body")
		return
	}
	if err := requests.Validate(&req); err != nil {
		responses.HandleValidationError(c, err.Error())
		return
	}

	reply, err := h.service.Complete(c.Request.Context(), username, req.ToDomain())
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
