package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/usecase/business"
)

// Drainer drains one batch of queued realtime messages
type Drainer interface {
	DrainTick(ctx context.Context) business.IngestResult
}

// IngestWorker drains the realtime message queue on a fixed interval
type IngestWorker struct {
	ingest   Drainer
	interval time.Duration
	logger   zerolog.Logger

	done   chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewIngestWorker creates a new realtime ingest worker
func NewIngestWorker(ingest Drainer, syncCfg *config.SyncConfig, logger zerolog.Logger) *IngestWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &IngestWorker{
		ingest:   ingest,
		interval: syncCfg.IngestInterval,
		logger:   logger.With().Str("component", "ingest_worker").Logger(),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the ingest worker
func (w *IngestWorker) Start() {
	w.logger.Info().Dur("interval", w.interval).Msg("Starting realtime ingest worker")

	w.wg.Add(1)
	go w.run()
}

// Stop gracefully stops the ingest worker
func (w *IngestWorker) Stop() {
	w.logger.Info().Msg("Stopping realtime ingest worker")

	w.cancel()
	close(w.done)
	w.wg.Wait()

	w.logger.Info().Msg("Realtime ingest worker stopped")
}

func (w *IngestWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *IngestWorker) tick() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Msg("Realtime ingest tick panicked")
		}
	}()

	w.ingest.DrainTick(w.ctx)
}
