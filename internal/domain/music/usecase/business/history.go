package business

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// SyncResult summarizes one history sync run
type SyncResult struct {
	Pages int
	Saved int
}

// HistorySync backfills a chat's history down to the newest stored message
type HistorySync struct {
	client    domain.TelegramClient
	repo      deps.MessageRepository
	publisher deps.EventPublisher
	pageSize  int
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewHistorySync creates a new history sync use case
func NewHistorySync(
	client domain.TelegramClient,
	repo deps.MessageRepository,
	publisher deps.EventPublisher,
	syncCfg *config.SyncConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *HistorySync {
	return &HistorySync{
		client:    client,
		repo:      repo,
		publisher: publisher,
		pageSize:  syncCfg.HistoryPageSize,
		metrics:   m,
		logger:    logger.With().Str("component", "history_sync").Logger(),
	}
}

// SyncHistory walks the chat history from newest to oldest and stores new music messages.
// It stops at the first already stored message id, at an empty page or when paging stalls.
func (s *HistorySync) SyncHistory(ctx context.Context, chat domain.RemoteChat) (SyncResult, error) {
	start := time.Now()
	var result SyncResult

	cursor, hasCursor, err := s.repo.MaxMessageID(ctx, chat.ID)
	if err != nil {
		s.metrics.RecordHistorySyncError()
		return result, err
	}

	logger := s.logger.With().Int64("chat_id", chat.ID).Str("title", chat.Title).Logger()
	logger.Debug().Int64("cursor", cursor).Bool("has_cursor", hasCursor).Msg("Starting history sync")

	var fromMessageID int64
	for {
		page, err := s.client.GetChatHistory(ctx, chat.ID, fromMessageID, s.pageSize)
		if err != nil {
			s.metrics.RecordHistorySyncError()
			return result, fmt.Errorf("failed to fetch history of chat %d: %w", chat.ID, err)
		}

		if len(page.Messages) == 0 || page.TotalCount == 0 {
			break
		}
		result.Pages++

		reachedExisting := false
		batch := make([]entities.MusicMessage, 0, len(page.Messages))

		for _, msg := range page.Messages {
			if hasCursor && msg.ID <= cursor {
				reachedExisting = true
				break
			}

			record, ok := entities.FromRemote(msg)
			if !ok {
				continue
			}

			exists, err := s.repo.Exists(ctx, record.ChatID, record.MessageID)
			if err != nil {
				s.metrics.RecordHistorySyncError()
				return result, err
			}
			if exists {
				continue
			}

			batch = append(batch, record)
		}

		if len(batch) > 0 {
			inserted, err := s.repo.SaveBatch(ctx, batch)
			if err != nil {
				s.metrics.RecordHistorySyncError()
				return result, err
			}
			result.Saved += len(inserted)
			publishAll(ctx, s.publisher, inserted, logger)
		}

		if reachedExisting {
			break
		}

		next := page.Messages[len(page.Messages)-1].ID
		if next == 0 || next == fromMessageID {
			break
		}
		fromMessageID = next
	}

	s.metrics.RecordHistorySync(result.Pages, result.Saved, time.Since(start).Seconds())

	logger.Info().
		Int("pages", result.Pages).
		Int("saved", result.Saved).
		Dur("duration", time.Since(start)).
		Msg("History sync completed")

	return result, nil
}

// publishAll announces stored messages; a failed publish never undoes the insert
func publishAll(ctx context.Context, publisher deps.EventPublisher, messages []entities.MusicMessage, logger zerolog.Logger) {
	for _, message := range messages {
		if err := publisher.PublishMusicIngested(ctx, message); err != nil {
			logger.Warn().Err(err).
				Int64("chat_id", message.ChatID).
				Int64("message_id", message.MessageID).
				Msg("Failed to publish music ingested event")
		}
	}
}
