package stream

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/repository/storage"
	streamhttp "github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/delivery/http"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/http/server"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

// Module provides audio streaming components for fx DI
var Module = fx.Module("stream",
	fx.Provide(
		func(r *storage.Repository) deps.TrackStore { return r },
		business.NewStreamer,
		NewHandlerFx,
		streamhttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// NewHandlerFx creates the stream handler for fx DI
func NewHandlerFx(
	streamer *business.Streamer,
	mapper *pkgerrors.Mapper,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *streamhttp.Handler {
	return streamhttp.NewHandler(streamer, mapper, m, logger)
}

func registerRoutes(srv *server.Server, router *streamhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
