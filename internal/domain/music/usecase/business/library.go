package business

import (
	"context"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/dto"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/mapfn"
)

// Library serves the stored music catalogue
type Library struct {
	repo deps.MessageRepository
}

// NewLibrary creates a new library use case
func NewLibrary(repo deps.MessageRepository) *Library {
	return &Library{repo: repo}
}

// ListTracks returns every stored track of a chat, newest first
func (l *Library) ListTracks(ctx context.Context, chatID int64) ([]dto.TrackResponse, error) {
	messages, err := l.repo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return mapfn.ConvertSlice(messages, dto.NewTrackResponse), nil
}
