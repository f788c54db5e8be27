package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers streaming routes
type Router struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a new stream router
func NewRouter(handler *Handler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers stream routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/music/stream/{msgId}", r.handler.Stream)

	r.logger.Info().Msg("Stream routes registered")
}
