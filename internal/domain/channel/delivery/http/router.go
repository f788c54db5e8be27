package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers channel routes
type Router struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a new channel router
func NewRouter(handler *Handler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers channel routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/music/folders", r.handler.ListFolders)
	rt.GET("/music/channels", r.handler.ListChannels)

	r.logger.Info().Msg("Channel routes registered")
}
