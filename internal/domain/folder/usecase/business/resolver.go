package business

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	foldererrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/folder/errors"
)

// Resolver expands a folder name into its member chats
type Resolver struct {
	client   domain.TelegramClient
	snapshot domain.FolderSnapshot
	logger   zerolog.Logger
}

// NewResolver creates a new folder resolver
func NewResolver(client domain.TelegramClient, snapshot domain.FolderSnapshot, logger zerolog.Logger) *Resolver {
	return &Resolver{
		client:   client,
		snapshot: snapshot,
		logger:   logger.With().Str("component", "folder_resolver").Logger(),
	}
}

// Find looks the folder up by exact, case-sensitive name
func (r *Resolver) Find(folderName string) (domain.Folder, bool) {
	for _, folder := range r.snapshot.Current() {
		if folder.Name == folderName {
			return folder, true
		}
	}
	return domain.Folder{}, false
}

// ResolveChats fetches every member chat of the folder.
// Chats that fail to load are logged and skipped.
func (r *Resolver) ResolveChats(ctx context.Context, folderName string) ([]domain.RemoteChat, error) {
	detail, err := r.detail(ctx, folderName)
	if err != nil {
		return nil, err
	}

	chats := make([]domain.RemoteChat, 0, len(detail.ChatIDs))
	for _, chatID := range detail.ChatIDs {
		chat, err := r.client.GetChat(ctx, chatID)
		if err != nil {
			r.logger.Error().Err(err).
				Str("folder", folderName).
				Int64("chat_id", chatID).
				Msg("Failed to load folder chat, skipping")
			continue
		}
		chats = append(chats, *chat)
	}

	r.logger.Debug().
		Str("folder", folderName).
		Int("members", len(detail.ChatIDs)).
		Int("resolved", len(chats)).
		Msg("Folder resolved")

	return chats, nil
}

// ContainsChat reports whether the folder lists the chat, without fetching the chat itself
func (r *Resolver) ContainsChat(ctx context.Context, folderName string, chatID int64) (bool, error) {
	detail, err := r.detail(ctx, folderName)
	if err != nil {
		return false, err
	}

	for _, id := range detail.ChatIDs {
		if id == chatID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Resolver) detail(ctx context.Context, folderName string) (*domain.FolderDetail, error) {
	folder, ok := r.Find(folderName)
	if !ok {
		r.logger.Warn().Str("folder", folderName).Msg("Folder not found in snapshot")
		return nil, foldererrors.ErrFolderNotFound
	}

	detail, err := r.client.GetChatFolder(ctx, folder.ID)
	if errors.Is(err, domain.ErrFolderNotFound) {
		r.logger.Warn().Str("folder", folderName).Int("folder_id", folder.ID).Msg("Folder vanished on the remote side")
		return nil, foldererrors.ErrFolderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch folder %q: %w", folderName, err)
	}

	return detail, nil
}
