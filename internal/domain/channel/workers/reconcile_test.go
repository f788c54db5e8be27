package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/cache"
)

type mockReconciler struct {
	reconciles atomic.Int32
	syncs      atomic.Int32
}

func (m *mockReconciler) Reconcile(ctx context.Context, folderName string) (business.ReconcileResult, error) {
	m.reconciles.Add(1)
	return business.ReconcileResult{}, nil
}

func (m *mockReconciler) SyncAll(ctx context.Context, folderName string) (business.ReconcileResult, error) {
	m.syncs.Add(1)
	return business.ReconcileResult{}, nil
}

func syncConfig() *config.SyncConfig {
	return &config.SyncConfig{
		FolderName:        "Music",
		ReconcileSchedule: "@every 1s",
		OnStartup:         true,
		StartupWait:       2 * time.Second,
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Condition not met before timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReconcileWorker_StartupSyncWaitsForSnapshot(t *testing.T) {
	reconciler := &mockReconciler{}
	snapshot := cache.NewFolderSnapshot(zerolog.Nop())
	w := NewReconcileWorker(reconciler, snapshot, syncConfig(), zerolog.Nop())

	if err := w.Start(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if reconciler.syncs.Load() != 0 {
		t.Fatal("Expected startup sync to wait for folder snapshot")
	}

	snapshot.Replace([]domain.Folder{{ID: 1, Name: "Music"}})
	waitUntil(t, 2*time.Second, func() bool { return reconciler.syncs.Load() == 1 })
}

func TestReconcileWorker_StartupSyncGivesUp(t *testing.T) {
	reconciler := &mockReconciler{}
	cfg := syncConfig()
	cfg.StartupWait = 50 * time.Millisecond
	w := NewReconcileWorker(reconciler, cache.NewFolderSnapshot(zerolog.Nop()), cfg, zerolog.Nop())

	if err := w.Start(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(700 * time.Millisecond)
	w.Stop()

	if reconciler.syncs.Load() != 0 {
		t.Error("Expected startup sync to be skipped without snapshot")
	}
}

func TestReconcileWorker_TickSkipsWithoutSnapshot(t *testing.T) {
	reconciler := &mockReconciler{}
	snapshot := cache.NewFolderSnapshot(zerolog.Nop())
	w := NewReconcileWorker(reconciler, snapshot, syncConfig(), zerolog.Nop())

	w.tick()
	if reconciler.reconciles.Load() != 0 {
		t.Error("Expected tick to skip without snapshot")
	}

	snapshot.Replace([]domain.Folder{{ID: 1, Name: "Music"}})
	w.tick()
	if reconciler.reconciles.Load() != 1 {
		t.Errorf("Expected 1 reconcile, got %d", reconciler.reconciles.Load())
	}
}

func TestReconcileWorker_InvalidSchedule(t *testing.T) {
	cfg := syncConfig()
	cfg.ReconcileSchedule = "not a schedule"
	w := NewReconcileWorker(&mockReconciler{}, cache.NewFolderSnapshot(zerolog.Nop()), cfg, zerolog.Nop())

	if err := w.Start(); err == nil {
		t.Error("Expected error for invalid schedule, got nil")
	}
}
