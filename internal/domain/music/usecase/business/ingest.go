package business

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// IngestResult summarizes one drain tick
type IngestResult struct {
	Processed int
	Saved     int
	Failed    int
}

// RealtimeIngest stores music messages pushed by Telegram into folder chats
type RealtimeIngest struct {
	queue      domain.MessageQueue
	snapshot   domain.FolderSnapshot
	membership deps.FolderMembership
	repo       deps.MessageRepository
	publisher  deps.EventPublisher
	folderName string
	batchSize  int
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewRealtimeIngest creates a new realtime ingest use case
func NewRealtimeIngest(
	queue domain.MessageQueue,
	snapshot domain.FolderSnapshot,
	membership deps.FolderMembership,
	repo deps.MessageRepository,
	publisher deps.EventPublisher,
	syncCfg *config.SyncConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RealtimeIngest {
	return &RealtimeIngest{
		queue:      queue,
		snapshot:   snapshot,
		membership: membership,
		repo:       repo,
		publisher:  publisher,
		folderName: syncCfg.FolderName,
		batchSize:  syncCfg.IngestBatchSize,
		metrics:    m,
		logger:     logger.With().Str("component", "realtime_ingest").Logger(),
	}
}

// DrainTick processes up to one batch of queued messages.
// Messages stay queued until the first folder snapshot arrives.
// A failing or panicking message is counted and skipped.
func (e *RealtimeIngest) DrainTick(ctx context.Context) IngestResult {
	var result IngestResult

	if len(e.snapshot.Current()) == 0 {
		return result
	}

	members := make(map[int64]bool)

	for result.Processed < e.batchSize {
		msg, ok := e.queue.Pop()
		if !ok {
			break
		}
		result.Processed++

		saved, err := e.process(ctx, msg, members)
		switch {
		case err != nil:
			result.Failed++
			e.metrics.RecordRealtimeMessage("failed")
			e.logger.Error().Err(err).
				Int64("chat_id", msg.ChatID).
				Int64("message_id", msg.ID).
				Msg("Failed to ingest message")
		case saved:
			result.Saved++
			e.metrics.RecordRealtimeMessage("saved")
		default:
			e.metrics.RecordRealtimeMessage("skipped")
		}
	}

	e.metrics.UpdateQueueLength(e.queue.Len())

	if result.Processed > 0 {
		e.logger.Debug().
			Int("processed", result.Processed).
			Int("saved", result.Saved).
			Int("failed", result.Failed).
			Msg("Realtime batch drained")
	}

	return result
}

func (e *RealtimeIngest) process(ctx context.Context, msg domain.RemoteMessage, members map[int64]bool) (saved bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			saved, err = false, fmt.Errorf("panic while ingesting message: %v", r)
		}
	}()

	member, known := members[msg.ChatID]
	if !known {
		member, err = e.membership.ContainsChat(ctx, e.folderName, msg.ChatID)
		if err != nil {
			return false, err
		}
		members[msg.ChatID] = member
	}
	if !member {
		return false, nil
	}

	record, ok := entities.FromRemote(msg)
	if !ok {
		return false, nil
	}

	exists, err := e.repo.Exists(ctx, record.ChatID, record.MessageID)
	if err != nil || exists {
		return false, err
	}

	created, err := e.repo.Save(ctx, record)
	if err != nil || !created {
		return false, err
	}

	publishAll(ctx, e.publisher, []entities.MusicMessage{record}, e.logger)
	return true, nil
}
