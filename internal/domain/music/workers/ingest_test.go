package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/usecase/business"
)

type mockDrainer struct {
	calls atomic.Int32
	panic bool
}

func (m *mockDrainer) DrainTick(ctx context.Context) business.IngestResult {
	m.calls.Add(1)
	if m.panic {
		panic("boom")
	}
	return business.IngestResult{}
}

func TestIngestWorker_TicksUntilStopped(t *testing.T) {
	drainer := &mockDrainer{}
	w := NewIngestWorker(drainer, &config.SyncConfig{IngestInterval: 5 * time.Millisecond}, zerolog.Nop())

	w.Start()
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	calls := drainer.calls.Load()
	if calls == 0 {
		t.Fatal("Expected at least one tick")
	}

	time.Sleep(20 * time.Millisecond)
	if drainer.calls.Load() != calls {
		t.Error("Expected no ticks after Stop")
	}
}

func TestIngestWorker_SurvivesPanics(t *testing.T) {
	drainer := &mockDrainer{panic: true}
	w := NewIngestWorker(drainer, &config.SyncConfig{IngestInterval: 5 * time.Millisecond}, zerolog.Nop())

	w.Start()
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	if drainer.calls.Load() < 2 {
		t.Errorf("Expected ticks to continue after a panic, got %d", drainer.calls.Load())
	}
}
