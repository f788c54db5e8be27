package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/http/middleware"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/http/server"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/httputil"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
	fx.Provide(NewErrorMapperFx),
)

// NewErrorMapperFx provides the shared domain error to HTTP status mapper
func NewErrorMapperFx(logger zerolog.Logger) *pkgerrors.Mapper {
	return pkgerrors.NewMapper(logger)
}

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	securityCfg *config.SecurityConfig,
	logger zerolog.Logger,
) *server.Server {
	chain := []httputil.Middleware{middleware.RequestID(logger)}
	if securityCfg.SignatureEnabled {
		chain = append(chain, middleware.NewSignatureVerifier(securityCfg, logger).Middleware())
		logger.Info().Int("api_keys", len(securityCfg.APIKeys)).Msg("Request signature verification enabled")
	}

	srv := server.NewServer(serviceCfg.Name, serviceCfg.Port, logger, chain...)

	// Register Prometheus metrics endpoint
	srv.RegisterMetrics()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
