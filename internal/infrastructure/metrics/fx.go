package metrics

import "go.uber.org/fx"

// Module provides the shared metrics instance for fx DI
var Module = fx.Module("metrics",
	fx.Provide(GetDefaultMetrics),
)
