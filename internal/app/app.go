package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	health "github.com/Conte777/NewsFlow/services/music-service/internal/delivery/http"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/folder"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		infrastructure.Module,
		// Domain modules
		folder.Module,
		music.Module,
		channel.Module, // depends on music history sync
		stream.Module,  // depends on music storage
		health.Module,
	)
}
