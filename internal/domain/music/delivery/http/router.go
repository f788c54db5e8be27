package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers music catalogue routes
type Router struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a new music router
func NewRouter(handler *Handler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers music routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/music/folder/{fid}", r.handler.ListTracks)

	r.logger.Info().Msg("Music routes registered")
}
