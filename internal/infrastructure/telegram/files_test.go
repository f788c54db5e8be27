package telegram

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/telegram/fileid"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

func newTestManager(t *testing.T) *DownloadManager {
	t.Helper()
	m := NewDownloadManager(t.TempDir(), metrics.GetDefaultMetrics(), zerolog.Nop())
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDownloadManager_ProgressiveDownload(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	id := fileid.Encode(fileid.Location{Type: fileid.TypeAudio, ID: 1, AccessHash: 2})
	m.remember(domain.FileRef{ID: id, Size: 6})

	release := make(chan struct{})
	m.setFetcher(func(ctx context.Context, loc tg.InputFileLocationClass, w io.Writer) error {
		if _, err := w.Write([]byte("abc")); err != nil {
			return err
		}
		<-release
		_, err := w.Write([]byte("def"))
		return err
	})

	completed := make(chan domain.RemoteFile, 1)
	m.OnComplete(func(ctx context.Context, file domain.RemoteFile) { completed <- file })

	if err := m.DownloadFile(ctx, id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := m.DownloadFile(ctx, id); err != nil {
		t.Fatalf("Expected repeated download to be a no-op, got %v", err)
	}

	file, err := m.GetFile(ctx, id)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if file.LocalPath == "" || file.IsComplete || file.Size != 6 {
		t.Fatalf("Expected running download with path, got %+v", file)
	}

	waitFor(t, func() bool {
		info, err := os.Stat(file.LocalPath)
		return err == nil && info.Size() == 3
	})

	close(release)

	select {
	case done := <-completed:
		if !done.IsComplete || done.Size != 6 {
			t.Errorf("Unexpected completed file %+v", done)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected completion hook to run")
	}

	file, _ = m.GetFile(ctx, id)
	if !file.IsComplete {
		t.Error("Expected file to be complete")
	}
}

func TestDownloadManager_FailedDownloadIsForgotten(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	id := fileid.Encode(fileid.Location{Type: fileid.TypeDocument, ID: 5})
	m.setFetcher(func(ctx context.Context, loc tg.InputFileLocationClass, w io.Writer) error {
		return errors.New("FILE_REFERENCE_EXPIRED")
	})

	if err := m.DownloadFile(ctx, id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	waitFor(t, func() bool {
		file, err := m.GetFile(ctx, id)
		return err == nil && file.LocalPath == ""
	})
}

func TestDownloadManager_NotConnected(t *testing.T) {
	m := newTestManager(t)

	id := fileid.Encode(fileid.Location{Type: fileid.TypeDocument, ID: 5})
	if err := m.DownloadFile(context.Background(), id); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestDownloadManager_InvalidID(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetFile(context.Background(), "%%%")
	var notFound *pkgerrors.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestDownloadManager_RestoresCompletedFile(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	loc := fileid.Location{Type: fileid.TypeAudio, ID: 9}
	id := fileid.Encode(loc)
	if err := os.WriteFile(m.path(loc), []byte("1234"), 0o644); err != nil {
		t.Fatal(err)
	}

	file, _ := m.GetFile(ctx, id)
	if file.LocalPath != "" {
		t.Error("Expected file of unknown size to be ignored")
	}

	m.remember(domain.FileRef{ID: id, Size: 4})
	file, _ = m.GetFile(ctx, id)
	if !file.IsComplete || file.LocalPath == "" {
		t.Errorf("Expected completed file to be restored, got %+v", file)
	}
}

func TestDownloadManager_RotatedReferenceSharesDownload(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	first := fileid.Encode(fileid.Location{Type: fileid.TypeAudio, ID: 42, FileReference: []byte{1}})
	rotated := fileid.Encode(fileid.Location{Type: fileid.TypeAudio, ID: 42, FileReference: []byte{2}})
	if first == rotated {
		t.Fatal("Expected ids with different references to differ")
	}
	m.remember(domain.FileRef{ID: first, Size: 6, MimeType: "audio/mpeg"})

	var fetches atomic.Int32
	release := make(chan struct{})
	m.setFetcher(func(ctx context.Context, loc tg.InputFileLocationClass, w io.Writer) error {
		fetches.Add(1)
		if _, err := w.Write([]byte("abc")); err != nil {
			return err
		}
		<-release
		_, err := w.Write([]byte("def"))
		return err
	})

	completed := make(chan domain.RemoteFile, 2)
	m.OnComplete(func(ctx context.Context, file domain.RemoteFile) { completed <- file })

	if err := m.DownloadFile(ctx, first); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	running, _ := m.GetFile(ctx, first)
	waitFor(t, func() bool {
		info, err := os.Stat(running.LocalPath)
		return err == nil && info.Size() == 3
	})

	if err := m.DownloadFile(ctx, rotated); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	close(release)

	var done domain.RemoteFile
	select {
	case done = <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected completion hook to run")
	}

	if fetches.Load() != 1 {
		t.Errorf("Expected 1 fetch, got %d", fetches.Load())
	}
	if done.MimeType != "audio/mpeg" {
		t.Errorf("Expected mime type audio/mpeg, got %s", done.MimeType)
	}

	content, err := os.ReadFile(done.LocalPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(content) != "abcdef" {
		t.Errorf("Expected content abcdef, got %q", content)
	}

	file, _ := m.GetFile(ctx, rotated)
	if !file.IsComplete || file.LocalPath != done.LocalPath || file.Size != 6 {
		t.Errorf("Expected rotated id to see the completed download, got %+v", file)
	}
}

func TestDownloadManager_RetryAfterFailureKeepsNewFile(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	loc := fileid.Location{Type: fileid.TypeAudio, ID: 7}
	id := fileid.Encode(loc)

	var attempts atomic.Int32
	m.setFetcher(func(ctx context.Context, loc tg.InputFileLocationClass, w io.Writer) error {
		if attempts.Add(1) == 1 {
			_, _ = w.Write([]byte("par"))
			return errors.New("FILE_REFERENCE_EXPIRED")
		}
		_, err := w.Write([]byte("full"))
		return err
	})

	completed := make(chan domain.RemoteFile, 1)
	m.OnComplete(func(ctx context.Context, file domain.RemoteFile) { completed <- file })

	if err := m.DownloadFile(ctx, id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitFor(t, func() bool {
		file, err := m.GetFile(ctx, id)
		return err == nil && file.LocalPath == ""
	})
	if _, err := os.Stat(m.path(loc)); !os.IsNotExist(err) {
		t.Errorf("Expected failed download to be removed, got %v", err)
	}

	if err := m.DownloadFile(ctx, id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	select {
	case done := <-completed:
		content, err := os.ReadFile(done.LocalPath)
		if err != nil || string(content) != "full" {
			t.Errorf("Expected content full, got %q err=%v", content, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected completion hook to run")
	}
}
