package deps

import (
	"context"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/entities"
)

// UpsertOutcome tells what an upsert changed
type UpsertOutcome int

const (
	Unchanged UpsertOutcome = iota
	Created
	Updated
)

// ChannelRepository defines interface for tracked channel storage
type ChannelRepository interface {
	Upsert(ctx context.Context, channel entities.Channel) (UpsertOutcome, error)
	// DeleteMissing removes channels of a folder not in keep together with their music messages.
	// It never deletes anything when keep is empty.
	DeleteMissing(ctx context.Context, folderName string, keep []int64) (int, error)
	ListAll(ctx context.Context) ([]entities.Channel, error)
	ListByFolder(ctx context.Context, folderName string) ([]entities.Channel, error)
}

// FolderResolver expands a folder name into its member chats
type FolderResolver interface {
	ResolveChats(ctx context.Context, folderName string) ([]domain.RemoteChat, error)
}

// HistorySyncer backfills the history of one chat and reports how many messages it saved
type HistorySyncer interface {
	SyncHistory(ctx context.Context, chat domain.RemoteChat) (int, error)
}

// HistorySyncFunc adapts a function to HistorySyncer
type HistorySyncFunc func(ctx context.Context, chat domain.RemoteChat) (int, error)

func (f HistorySyncFunc) SyncHistory(ctx context.Context, chat domain.RemoteChat) (int, error) {
	return f(ctx, chat)
}
