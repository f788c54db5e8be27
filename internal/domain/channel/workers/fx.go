package workers

import (
	"context"

	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/usecase/business"
)

// Module provides channel workers for fx DI
var Module = fx.Module("channel-workers",
	fx.Provide(
		func(r *business.Reconciler) FolderReconciler { return r },
		NewReconcileWorker,
	),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle registers the reconcile worker with fx.Lifecycle
func registerLifecycle(lc fx.Lifecycle, w *ReconcileWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start()
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}
