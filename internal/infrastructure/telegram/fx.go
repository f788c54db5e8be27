package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// Module provides the Telegram client and file service for fx DI
var Module = fx.Module("telegram",
	fx.Provide(
		NewDownloadManagerFx,
		NewMTProtoClientFx,
		func(c *MTProtoClient) domain.TelegramClient { return c },
		func(m *DownloadManager) domain.FileService { return m },
	),
)

// NewDownloadManagerFx creates the download manager and cancels running downloads on stop
func NewDownloadManagerFx(
	lc fx.Lifecycle,
	cfg *config.TelegramConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *DownloadManager {
	manager := NewDownloadManager(cfg.DownloadDir, m, logger)

	lc.Append(fx.Hook{
		OnStop: manager.Close,
	})

	return manager
}

// NewMTProtoClientFx creates the client and connects it in the background on start,
// since an interactive login can outlast the start timeout.
func NewMTProtoClientFx(
	lc fx.Lifecycle,
	cfg *config.TelegramConfig,
	db *gorm.DB,
	files *DownloadManager,
	snapshot domain.FolderSnapshot,
	queue domain.MessageQueue,
	m *metrics.Metrics,
	zapLogger *zap.Logger,
	logger zerolog.Logger,
) (*MTProtoClient, error) {
	sessionStorage, err := NewSessionStorage(db, cfg.SessionName)
	if err != nil {
		return nil, err
	}

	client, err := NewMTProtoClient(MTProtoClientConfig{
		APIID:     cfg.APIID,
		APIHash:   cfg.APIHash,
		Phone:     cfg.Phone,
		RateLimit: cfg.RateLimit,
		Session:   sessionStorage,
		State:     NewUpdatesStateStorage(db, logger),
		Files:     files,
		Snapshot:  snapshot,
		Queue:     queue,
		Metrics:   m,
		ZapLogger: zapLogger,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := client.Connect(connectCtx); err != nil && connectCtx.Err() == nil {
					logger.Error().Err(err).Msg("failed to connect to Telegram")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return client.Disconnect(ctx)
		},
	})

	return client, nil
}
