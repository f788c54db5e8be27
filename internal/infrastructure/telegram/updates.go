package telegram

import (
	"context"
	"time"

	"github.com/gotd/td/tg"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

const folderRefreshTimeout = 30 * time.Second

func (c *MTProtoClient) registerHandlers() {
	c.dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		c.peers.learnEntities(e)
		c.enqueue(u.Message)
		return nil
	})

	c.dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		c.peers.learnEntities(e)
		c.enqueue(u.Message)
		return nil
	})

	c.dispatcher.OnDialogFilter(func(ctx context.Context, e tg.Entities, u *tg.UpdateDialogFilter) error {
		c.onFoldersChanged(ctx)
		return nil
	})

	c.dispatcher.OnDialogFilters(func(ctx context.Context, e tg.Entities, u *tg.UpdateDialogFilters) error {
		c.onFoldersChanged(ctx)
		return nil
	})

	c.dispatcher.OnDialogFilterOrder(func(ctx context.Context, e tg.Entities, u *tg.UpdateDialogFilterOrder) error {
		c.onFoldersChanged(ctx)
		return nil
	})
}

// enqueue hands a pushed message to the realtime ingest queue
func (c *MTProtoClient) enqueue(raw tg.MessageClass) {
	msg, ok := convertMessage(raw)
	if !ok {
		return
	}

	c.files.remember(contentFiles(msg.Content)...)
	c.queue.Push(msg)

	c.logger.Debug().
		Int64("chat_id", msg.ChatID).
		Int64("message_id", msg.ID).
		Str("content", domain.ContentKind(msg.Content)).
		Msg("message queued")
}

// onFoldersChanged refetches the whole filter list; update payloads carry only the delta
func (c *MTProtoClient) onFoldersChanged(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, folderRefreshTimeout)
	defer cancel()

	if err := c.refreshFolders(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to refresh chat folders")
	}
}
