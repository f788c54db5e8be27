package business

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/dto"
	channelerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/errors"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/mapfn"
)

// dialogLimit bounds the main dialog list scanned for channels
const dialogLimit = 200

// Catalogue lists tracked channels and the account's broadcast channels
type Catalogue struct {
	repo   deps.ChannelRepository
	client domain.TelegramClient
	logger zerolog.Logger
}

// NewCatalogue creates a new channel catalogue
func NewCatalogue(repo deps.ChannelRepository, client domain.TelegramClient, logger zerolog.Logger) *Catalogue {
	return &Catalogue{
		repo:   repo,
		client: client,
		logger: logger.With().Str("component", "channel_catalogue").Logger(),
	}
}

// ListFolders returns every tracked channel as a browsable folder
func (c *Catalogue) ListFolders(ctx context.Context) ([]dto.FolderResponse, error) {
	channels, err := c.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return mapfn.ConvertSlice(channels, dto.NewFolderResponse), nil
}

// ListRemoteChannels returns titles of broadcast channels in the main dialog list.
// An empty prefix matches every channel.
func (c *Catalogue) ListRemoteChannels(ctx context.Context, prefix string) ([]string, error) {
	if !c.client.IsConnected() {
		return nil, channelerrors.ErrNotConnected
	}

	chats, err := c.client.ListChannels(ctx, dialogLimit)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(chats))
	for _, chat := range chats {
		if chat.Title == "" || !strings.HasPrefix(chat.Title, prefix) {
			continue
		}
		names = append(names, chat.Title)
	}

	return names, nil
}
