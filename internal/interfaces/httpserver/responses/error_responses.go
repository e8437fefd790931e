package responses

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/llm"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/infrastructure/logger"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// ErrorResponse documents the JSON error body in swagger.
type ErrorResponse = platformerrors.HTTPErrorResponse

// HandleError maps domain errors onto the response. Upstream provider errors
// are relayed with their own status code and raw body. Canceled requests are
// aborted without a body.
func HandleError(reqCtx *gin.Context, err error) {
	log := logger.GetLogger()

	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		log.Warn().
			Str("provider", providerErr.Provider).
			Int("status", providerErr.StatusCode).
			Str("request_id", platformerrors.RequestIDFromContext(reqCtx.Request.Context())).
			Msg("relaying upstream provider error")
		contentType := providerErr.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		reqCtx.Abort()
		reqCtx.Data(providerErr.StatusCode, contentType, providerErr.Body)
		return
	}

	if errors.Is(err, context.Canceled) && platformerrors.GetPlatformError(err) == nil {
		log.Info().Err(err).Msg("request canceled by client")
		reqCtx.AbortWithStatus(platformerrors.StatusClientClosedRequest)
		return
	}

	platformerrors.WriteError(reqCtx, err, log)
}

// HandleValidationError writes a 400 with message.
func HandleValidationError(reqCtx *gin.Context, message string) {
	platformerrors.WriteValidationError(reqCtx, message)
}
