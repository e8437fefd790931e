package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPErrorResponse represents the standard error response format.
type HTTPErrorResponse struct {
	Code      string `json:"code,omitempty"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteHTTPError writes a PlatformError as an HTTP response. Canceled errors
// abort without a body since nobody is listening.
func WriteHTTPError(c *gin.Context, err *PlatformError, log zerolog.Logger) {
	if err == nil {
		WriteInternalError(c, "unknown error")
		return
	}

	LogError(log, err)

	status := ErrorTypeToHTTPStatus(err.Type)
	if err.Type == ErrorTypeCanceled {
		c.AbortWithStatus(status)
		return
	}

	message := err.Message
	if status >= http.StatusInternalServerError {
		message = genericMessage(err.Type)
	}

	c.AbortWithStatusJSON(status, HTTPErrorResponse{
		Code:      err.UUID,
		Error:     errorTypeToString(err.Type),
		Message:   message,
		RequestID: err.RequestID,
	})
}

// WriteError writes any error as an HTTP response, treating errors that are
// not PlatformErrors as internal.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	if err == nil {
		WriteInternalError(c, "unknown error")
		return
	}
	if platformErr := GetPlatformError(err); platformErr != nil {
		WriteHTTPError(c, platformErr, log)
		return
	}
	log.Error().Err(err).Msg("unhandled error")
	WriteInternalError(c, genericMessage(ErrorTypeInternal))
}

// WriteValidationError writes a 400 Bad Request response.
func WriteValidationError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, HTTPErrorResponse{
		Error:   errorTypeToString(ErrorTypeValidation),
		Message: message,
	})
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, HTTPErrorResponse{
		Error:   errorTypeToString(ErrorTypeUnauthorized),
		Message: message,
	})
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPErrorResponse{
		Error:   errorTypeToString(ErrorTypeInternal),
		Message: message,
	})
}

func genericMessage(t ErrorType) string {
	switch t {
	case ErrorTypeParse:
		return "the assistant returned a response that could not be understood"
	case ErrorTypeExternal:
		return "an upstream provider request failed"
	case ErrorTypeStorage:
		return "object storage request failed"
	default:
		return "internal server error"
	}
}

func errorTypeToString(t ErrorType) string {
	switch t {
	case ErrorTypeNotFound:
		return "not_found_error"
	case ErrorTypeValidation:
		return "validation_error"
	case ErrorTypeUnauthorized:
		return "unauthorized_error"
	case ErrorTypeForbidden:
		return "forbidden_error"
	case ErrorTypeNotImplemented:
		return "not_implemented_error"
	case ErrorTypeExternal:
		return "external_error"
	case ErrorTypeParse:
		return "parse_error"
	case ErrorTypeStorage:
		return "storage_error"
	case ErrorTypeCanceled:
		return "canceled_error"
	default:
		return "internal_error"
	}
}
