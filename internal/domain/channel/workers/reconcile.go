package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/usecase/business"
)

// snapshotPollInterval is how often the startup sync checks for the first folder snapshot
const snapshotPollInterval = 500 * time.Millisecond

// FolderReconciler runs reconciliation cycles
type FolderReconciler interface {
	Reconcile(ctx context.Context, folderName string) (business.ReconcileResult, error)
	SyncAll(ctx context.Context, folderName string) (business.ReconcileResult, error)
}

// ReconcileWorker runs folder reconciliation on a cron schedule and once at startup
type ReconcileWorker struct {
	reconciler  FolderReconciler
	snapshot    domain.FolderSnapshot
	folderName  string
	schedule    string
	onStartup   bool
	startupWait time.Duration
	logger      zerolog.Logger

	cron   *cron.Cron
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(
	reconciler FolderReconciler,
	snapshot domain.FolderSnapshot,
	syncCfg *config.SyncConfig,
	logger zerolog.Logger,
) *ReconcileWorker {
	ctx, cancel := context.WithCancel(context.Background())
	logger = logger.With().Str("component", "reconcile_worker").Logger()
	cronLogger := cronLogger{logger: logger}

	return &ReconcileWorker{
		reconciler:  reconciler,
		snapshot:    snapshot,
		folderName:  syncCfg.FolderName,
		schedule:    syncCfg.ReconcileSchedule,
		onStartup:   syncCfg.OnStartup,
		startupWait: syncCfg.StartupWait,
		logger:      logger,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start schedules the periodic cycle and launches the startup sync
func (w *ReconcileWorker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.tick); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", w.schedule, err)
	}

	w.logger.Info().
		Str("schedule", w.schedule).
		Str("folder", w.folderName).
		Bool("sync_on_startup", w.onStartup).
		Msg("Starting reconcile worker")

	w.cron.Start()

	if w.onStartup {
		w.wg.Add(1)
		go w.startupSync()
	}

	return nil
}

// Stop waits for a running cycle and the startup sync to finish
func (w *ReconcileWorker) Stop() {
	w.logger.Info().Msg("Stopping reconcile worker")

	w.cancel()
	<-w.cron.Stop().Done()
	w.wg.Wait()

	w.logger.Info().Msg("Reconcile worker stopped")
}

func (w *ReconcileWorker) tick() {
	if len(w.snapshot.Current()) == 0 {
		w.logger.Debug().Msg("Folder snapshot not received yet, skipping reconciliation")
		return
	}

	if _, err := w.reconciler.Reconcile(w.ctx, w.folderName); err != nil {
		w.logger.Error().Err(err).Msg("Reconciliation failed")
	}
}

func (w *ReconcileWorker) startupSync() {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Msg("Startup sync panicked")
		}
	}()

	if !w.waitForSnapshot() {
		w.logger.Warn().Dur("waited", w.startupWait).Msg("No folder snapshot received, skipping startup sync")
		return
	}

	if _, err := w.reconciler.SyncAll(w.ctx, w.folderName); err != nil {
		w.logger.Error().Err(err).Msg("Startup sync failed")
	}
}

// waitForSnapshot reports whether a folder snapshot arrived within the startup wait
func (w *ReconcileWorker) waitForSnapshot() bool {
	deadline := time.NewTimer(w.startupWait)
	defer deadline.Stop()

	ticker := time.NewTicker(snapshotPollInterval)
	defer ticker.Stop()

	for len(w.snapshot.Current()) == 0 {
		select {
		case <-w.ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}

	return true
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
