package workers

import (
	"context"

	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/usecase/business"
)

// Module provides music workers for fx DI
var Module = fx.Module("music-workers",
	fx.Provide(
		func(ingest *business.RealtimeIngest) Drainer { return ingest },
		NewIngestWorker,
	),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle registers the ingest worker with fx.Lifecycle
func registerLifecycle(lc fx.Lifecycle, w *IngestWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}
