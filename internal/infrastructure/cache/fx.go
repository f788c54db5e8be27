package cache

import (
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"go.uber.org/fx"
)

// Module provides process-scoped in-memory state for fx DI
var Module = fx.Module("cache",
	fx.Provide(
		NewFolderSnapshot,
		NewMessageQueue,
		func(s *FolderSnapshot) domain.FolderSnapshot { return s },
		func(q *MessageQueue) domain.MessageQueue { return q },
	),
)
