package music

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	folderbusiness "github.com/Conte777/NewsFlow/services/music-service/internal/domain/folder/usecase/business"
	musichttp "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/delivery/http"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/repository/storage"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/workers"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/http/server"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

// Module provides music catalogue and ingest components for fx DI
var Module = fx.Module("music",
	fx.Provide(
		storage.NewRepository,
		func(r *storage.Repository) deps.MessageRepository { return r },
		func(r *folderbusiness.Resolver) deps.FolderMembership { return r },
		business.NewHistorySync,
		business.NewRealtimeIngest,
		business.NewLibrary,
		NewHandlerFx,
		musichttp.NewRouter,
	),
	workers.Module,
	fx.Invoke(registerRoutes),
)

// NewHandlerFx creates the music handler for fx DI
func NewHandlerFx(library *business.Library, mapper *pkgerrors.Mapper, logger zerolog.Logger) *musichttp.Handler {
	return musichttp.NewHandler(library, mapper, logger)
}

func registerRoutes(srv *server.Server, router *musichttp.Router) {
	router.RegisterRoutes(srv.Router)
}
