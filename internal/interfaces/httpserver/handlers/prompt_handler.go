package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/requests"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/responses"
)

// PromptHandler exposes prompt generation and revision.
type PromptHandler struct {
	service *prompt.Service
	log     zerolog.Logger
}

func NewPromptHandler(service *prompt.Service, log zerolog.Logger) *PromptHandler {
	return &PromptHandler{
		service: service,
		log:     log.With().Str("component", "prompt-handler").Logger(),
	}
}

// Create godoc
// @Summary      Improve an image prompt
// @Description  Sends the prompt to the chat model and stores the improved version.
// @Tags         imagePrompt
// @Accept       json
// @Produce      json
// @Param        request  body      requests.ImagePromptRequest  true  "Prompt"
// @Success      200      {object}  prompt.Record
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /imagePrompt [post]
func (h *PromptHandler) Create(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req requests.ImagePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "invalid request body")
		return
	}
	if err := requests.Validate(&req); err != nil {
		responses.HandleValidationError(c, err.Error())
		return
	}
	mode, valid := prompt.ParseMode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if !valid {
		responses.HandleValidationError(c, "mode must be long or short")
		return
	}

	record, err := h.service.Generate(c.Request.Context(), username, prompt.GenerateRequest{
		Prompt:         req.Prompt,
		ConversationID: req.ConversationID,
		Mode:           mode,
	})
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Revise godoc
// @Summary      Revise an image prompt
// @Description  Rewrites a prompt with tags to include or exclude and an optional point of view and style.
// @Tags         imagePrompt
// @Accept       json
// @Produce      json
// @Param        request  body      requests.ImagePromptRevisionRequest  true  "Revision"
// @Success      200      {object}  responses.RevisionResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /imagePrompt [put]
func (h *PromptHandler) Revise(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	var req requests.ImagePromptRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "invalid request body")
		return
	}
	if err := requests.Validate(&req); err != nil {
		responses.HandleValidationError(c, err.Error())
		return
	}

	revision, err := h.service.Revise(c.Request.Context(), username, req.ToDomain())
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.RevisionResponse{
		ID:               revision.ID,
		ConversationID:   revision.ConversationID,
		RevisedPrompt:    revision.RevisedPrompt,
		SummaryOfChanges: revision.SummaryOfChanges,
	})
}

// Get godoc
// @Summary      Get an image prompt
// @Tags         imagePrompt
// @Produce      json
// @Param        id   path      string  true  "Prompt record id"
// @Success      200  {object}  prompt.Record
// @Failure      404  {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /imagePrompt/{id} [get]
func (h *PromptHandler) Get(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	record, err := h.service.Get(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
