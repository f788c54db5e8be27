package business

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/entities"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

// ReconcileResult summarizes one reconciliation cycle
type ReconcileResult struct {
	Skipped  bool
	Resolved int
	Created  int
	Updated  int
	Deleted  int
	Synced   int
}

// Reconciler keeps stored channels equal to the members of a folder
type Reconciler struct {
	resolver deps.FolderResolver
	repo     deps.ChannelRepository
	history  deps.HistorySyncer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewReconciler creates a new channel reconciler
func NewReconciler(
	resolver deps.FolderResolver,
	repo deps.ChannelRepository,
	history deps.HistorySyncer,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		resolver: resolver,
		repo:     repo,
		history:  history,
		metrics:  m,
		logger:   logger.With().Str("component", "channel_reconciler").Logger(),
	}
}

// Reconcile upserts the folder's chats, backfills new ones and drops chats that left the folder
func (r *Reconciler) Reconcile(ctx context.Context, folderName string) (ReconcileResult, error) {
	return r.reconcile(ctx, folderName, false)
}

// SyncAll reconciles the folder and backfills every resolved chat
func (r *Reconciler) SyncAll(ctx context.Context, folderName string) (ReconcileResult, error) {
	return r.reconcile(ctx, folderName, true)
}

func (r *Reconciler) reconcile(ctx context.Context, folderName string, syncAll bool) (ReconcileResult, error) {
	start := time.Now()
	var result ReconcileResult

	logger := r.logger.With().Str("folder", folderName).Logger()

	chats, err := r.resolver.ResolveChats(ctx, folderName)
	if err != nil && !errors.Is(err, domain.ErrFolderNotFound) {
		r.metrics.RecordReconcile("error", time.Since(start).Seconds())
		return result, err
	}
	if len(chats) == 0 {
		logger.Warn().Err(err).Msg("Folder has no resolvable chats, skipping reconciliation")
		result.Skipped = true
		r.metrics.RecordReconcile("skipped", time.Since(start).Seconds())
		return result, nil
	}
	result.Resolved = len(chats)

	keep := make([]int64, 0, len(chats))
	for _, chat := range chats {
		keep = append(keep, chat.ID)

		outcome, err := r.repo.Upsert(ctx, entities.FromRemote(chat, folderName))
		if err != nil {
			logger.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to store channel")
			continue
		}

		switch outcome {
		case deps.Created:
			result.Created++
			logger.Info().Int64("chat_id", chat.ID).Str("title", chat.Title).Msg("Tracking new channel")
		case deps.Updated:
			result.Updated++
		}

		if outcome == deps.Created || syncAll {
			saved, err := r.history.SyncHistory(ctx, chat)
			if err != nil {
				logger.Error().Err(err).Int64("chat_id", chat.ID).Msg("History sync failed")
				continue
			}
			result.Synced++
			logger.Debug().Int64("chat_id", chat.ID).Int("saved", saved).Msg("History synced")
		}
	}

	deleted, err := r.repo.DeleteMissing(ctx, folderName, keep)
	if err != nil {
		r.metrics.RecordReconcile("error", time.Since(start).Seconds())
		return result, err
	}
	result.Deleted = deleted

	r.metrics.RecordChannelChanges(result.Created, result.Updated, result.Deleted, result.Resolved)
	r.metrics.RecordReconcile("success", time.Since(start).Seconds())

	logger.Info().
		Int("resolved", result.Resolved).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Int("synced", result.Synced).
		Dur("duration", time.Since(start)).
		Msg("Channel reconciliation completed")

	return result, nil
}
