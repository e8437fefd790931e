package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates application route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the application routes. Callers apply auth on router.
func (r *Routes) Register(router gin.IRouter) {
	router.POST("/imagePrompt", r.handlers.Prompt.Create)
	router.PUT("/imagePrompt", r.handlers.Prompt.Revise)
	router.GET("/imagePrompt/:id", r.handlers.Prompt.Get)
	router.POST("/imagePrompt/:id/image", r.handlers.Image.Generate)
	router.GET("/image", r.handlers.Image.List)
	router.POST("/userimage", r.handlers.Image.Upload)
	router.POST("/chat", r.handlers.Chat.Complete)
}
