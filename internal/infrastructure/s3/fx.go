package s3

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/telegram"
)

// Module archives completed downloads to S3/MinIO when enabled
var Module = fx.Module("s3",
	fx.Invoke(registerArchiver),
)

type archiverParams struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.S3Config
	Files   *telegram.DownloadManager
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

func registerArchiver(p archiverParams) error {
	if !p.Config.Enabled {
		p.Logger.Info().Msg("S3 archive disabled")
		return nil
	}

	client, err := NewClient(p.Config, p.Logger)
	if err != nil {
		return err
	}

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.EnsureBucket(ctx); err != nil {
				return err
			}
			p.Files.OnComplete(NewArchiver(client, p.Metrics, p.Logger).Archive)
			p.Logger.Info().Str("bucket", p.Config.Bucket).Msg("S3 archive enabled")
			return nil
		},
	})

	return nil
}
