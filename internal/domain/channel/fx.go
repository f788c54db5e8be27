package channel

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	channelhttp "github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/delivery/http"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/repository/storage"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/workers"
	folderbusiness "github.com/Conte777/NewsFlow/services/music-service/internal/domain/folder/usecase/business"
	musicbusiness "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/http/server"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

// Module provides channel domain components for fx DI
var Module = fx.Module("channel",
	fx.Provide(
		storage.NewRepository,
		func(r *storage.Repository) deps.ChannelRepository { return r },
		func(r *folderbusiness.Resolver) deps.FolderResolver { return r },
		NewHistorySyncerFx,
		business.NewReconciler,
		business.NewCatalogue,
		NewHandlerFx,
		channelhttp.NewRouter,
	),
	workers.Module,
	fx.Invoke(registerRoutes),
)

// NewHistorySyncerFx exposes music history backfill to the reconciler
func NewHistorySyncerFx(h *musicbusiness.HistorySync) deps.HistorySyncer {
	return deps.HistorySyncFunc(func(ctx context.Context, chat domain.RemoteChat) (int, error) {
		result, err := h.SyncHistory(ctx, chat)
		return result.Saved, err
	})
}

// NewHandlerFx creates the channel handler for fx DI
func NewHandlerFx(catalogue *business.Catalogue, mapper *pkgerrors.Mapper, logger zerolog.Logger) *channelhttp.Handler {
	return channelhttp.NewHandler(catalogue, mapper, logger)
}

func registerRoutes(srv *server.Server, router *channelhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
