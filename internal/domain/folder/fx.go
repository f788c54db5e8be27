package folder

import (
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/folder/usecase/business"
	"go.uber.org/fx"
)

// Module provides folder resolution for fx DI
var Module = fx.Module("folder",
	fx.Provide(business.NewResolver),
)
