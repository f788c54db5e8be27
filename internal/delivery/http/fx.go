package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/http/server"
)

// Module provides the health endpoint for fx DI
var Module = fx.Module("health",
	fx.Provide(NewHealthHandlerFx),
	fx.Invoke(registerHealth),
)

// NewHealthHandlerFx creates the health handler over the service components
func NewHealthHandlerFx(
	db *gorm.DB,
	client domain.TelegramClient,
	snapshot domain.FolderSnapshot,
	publisher deps.EventPublisher,
	logger zerolog.Logger,
) *HealthHandler {
	return NewHealthHandler(logger,
		Component{Name: "database", Check: DatabaseCheck(db)},
		Component{Name: "telegram", Check: TelegramCheck(client)},
		Component{Name: "chat_folders", Check: FolderSnapshotCheck(snapshot)},
		Component{Name: "kafka_producer", Check: ProducerCheck(publisher)},
	)
}

func registerHealth(srv *server.Server, handler *HealthHandler) {
	srv.Router.GET("/health", fasthttpadaptor.NewFastHTTPHandler(handler))
}
