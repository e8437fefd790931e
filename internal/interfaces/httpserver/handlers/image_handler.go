package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/responses"
)

const (
	uploadFormField   = "image"
	multipartOverhead = 1 << 20
)

// ImageHandler exposes image generation, the gallery and user uploads.
type ImageHandler struct {
	service        *image.Service
	maxUploadBytes int64
	log            zerolog.Logger
}

func NewImageHandler(cfg *config.Config, service *image.Service, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		service:        service,
		maxUploadBytes: cfg.MaxUploadBytes,
		log:            log.With().Str("component", "image-handler").Logger(),
	}
}

// Generate godoc
// @Summary      Generate an image from a stored prompt
// @Description  Calls the image model, stores the original and three thumbnails, and records the attempt.
// @Tags         image
// @Produce      json
// @Param        id   path      string  true  "Prompt record id"
// @Success      200  {object}  responses.GeneratedImageResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      502  {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /imagePrompt/{id}/image [post]
func (h *ImageHandler) Generate(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	record, err := h.service.GenerateFromPrompt(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewGeneratedImageResponse(record))
}

// List godoc
// @Summary      List generated images
// @Description  Returns the caller's successful generations, newest first.
// @Tags         image
// @Produce      json
// @Success      200  {object}  responses.ImageListResponse
// @Security     BearerAuth
// @Router       /image [get]
func (h *ImageHandler) List(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	records, err := h.service.List(c.Request.Context(), username)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewImageListResponse(records))
}

// Upload godoc
// @Summary      Upload a user image
// @Description  Stores a png, jpeg or gif image together with its thumbnails.
// @Tags         image
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200    {object}  image.UserImage
// @Failure      400    {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /userimage [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.HandleValidationError(c, "image is too large")
			return
		}
		responses.HandleValidationError(c, "multipart field \"image\" is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		responses.HandleValidationError(c, "unable to read uploaded image")
		return
	}
	defer file.Close()

	reader := io.Reader(file)
	if h.maxUploadBytes > 0 {
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		responses.HandleValidationError(c, "unable to read uploaded image")
		return
	}

	h.log.Debug().
		Str("filename", strings.TrimSpace(header.Filename)).
		Int("bytes", len(data)).
		Msg("user image received")

	uploaded, err := h.service.UploadUserImage(c.Request.Context(), username, data)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, uploaded)
}
