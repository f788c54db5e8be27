package deps

import (
	"context"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
)

// TrackStore looks up stored music messages
type TrackStore interface {
	Get(ctx context.Context, chatID, messageID int64) (*entities.MusicMessage, error)
}
