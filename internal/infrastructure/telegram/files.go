package telegram

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/telegram/fileid"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

// CompletionHook is called after a download has been fully written to disk
type CompletionHook func(ctx context.Context, file domain.RemoteFile)

// fetchFunc streams a remote file location into w, in order
type fetchFunc func(ctx context.Context, loc tg.InputFileLocationClass, w io.Writer) error

type download struct {
	fileID   string
	path     string
	complete bool
}

// DownloadManager runs background downloads into a local directory.
// A file is visible through GetFile as soon as its download starts,
// and its local copy grows while the download runs.
// State is keyed by the local file name, so ids of the same document
// carrying different file references share one download.
type DownloadManager struct {
	dir string

	mu    sync.Mutex
	fetch fetchFunc
	sizes map[string]int64
	mimes map[string]string
	files map[string]*download
	hooks []CompletionHook

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewDownloadManager creates a manager writing into dir
func NewDownloadManager(dir string, m *metrics.Metrics, logger zerolog.Logger) *DownloadManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &DownloadManager{
		dir:     dir,
		sizes:   make(map[string]int64),
		mimes:   make(map[string]string),
		files:   make(map[string]*download),
		ctx:     ctx,
		cancel:  cancel,
		metrics: m,
		logger:  logger.With().Str("component", "download_manager").Logger(),
	}
}

// OnComplete registers a hook invoked after every finished download
func (m *DownloadManager) OnComplete(hook CompletionHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// attach enables downloads through the given API client
func (m *DownloadManager) attach(api *tg.Client) {
	d := downloader.NewDownloader()

	m.setFetcher(func(ctx context.Context, loc tg.InputFileLocationClass, w io.Writer) error {
		_, err := d.Download(api, loc).Stream(ctx, w)
		return err
	})
}

// detach disables new downloads, running ones fail on their own
func (m *DownloadManager) detach() {
	m.setFetcher(nil)
}

func (m *DownloadManager) setFetcher(fetch fetchFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetch = fetch
}

// remember records declared file sizes and types seen in message contents
func (m *DownloadManager) remember(files ...domain.FileRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range files {
		loc, err := fileid.Decode(f.ID)
		if err != nil {
			continue
		}
		key := loc.LocalName()
		if f.Size > 0 {
			m.sizes[key] = f.Size
		}
		if f.MimeType != "" {
			m.mimes[key] = f.MimeType
		}
	}
}

// GetFile reports the current state of a file
func (m *DownloadManager) GetFile(ctx context.Context, fileID string) (*domain.RemoteFile, error) {
	loc, err := fileid.Decode(fileID)
	if err != nil {
		return nil, pkgerrors.WrapNotFound("file not found", err)
	}

	key := loc.LocalName()

	m.mu.Lock()
	defer m.mu.Unlock()

	file := &domain.RemoteFile{
		ID:              fileID,
		Size:            m.sizes[key],
		MimeType:        m.mimes[key],
		CanBeDownloaded: true,
	}

	state, ok := m.files[key]
	if !ok {
		state, ok = m.restore(fileID, loc)
	}
	if ok {
		file.LocalPath = state.path
		file.IsComplete = state.complete
	}

	return file, nil
}

// restore picks up a file downloaded by a previous run, when its size proves it complete
func (m *DownloadManager) restore(fileID string, loc fileid.Location) (*download, bool) {
	key := loc.LocalName()
	size, known := m.sizes[key]
	if !known {
		return nil, false
	}

	path := m.path(loc)
	info, err := os.Stat(path)
	if err != nil || info.Size() != size {
		return nil, false
	}

	state := &download{fileID: fileID, path: path, complete: true}
	m.files[key] = state
	return state, true
}

// DownloadFile starts a background download and returns immediately.
// Repeated calls for a running or finished download are no-ops.
func (m *DownloadManager) DownloadFile(ctx context.Context, fileID string) error {
	loc, err := fileid.Decode(fileID)
	if err != nil {
		return pkgerrors.WrapNotFound("file not found", err)
	}

	key := loc.LocalName()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[key]; ok {
		return nil
	}
	if m.fetch == nil {
		return domain.ErrNotConnected
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	path := m.path(loc)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}

	state := &download{fileID: fileID, path: path}
	m.files[key] = state

	m.metrics.RecordDownload("started")
	m.logger.Debug().Str("file_id", fileID).Str("path", path).Msg("download started")

	m.wg.Add(1)
	go m.run(key, loc, out, state, m.fetch)

	return nil
}

func (m *DownloadManager) run(key string, loc fileid.Location, out *os.File, state *download, fetch fetchFunc) {
	defer m.wg.Done()

	err := fetch(m.ctx, loc.InputLocation(), out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		m.mu.Lock()
		if m.files[key] == state {
			_ = os.Remove(state.path)
			delete(m.files, key)
		}
		m.mu.Unlock()

		m.metrics.RecordDownload("failed")
		m.logger.Error().Err(err).Str("file_id", state.fileID).Msg("download failed")
		return
	}

	m.mu.Lock()
	state.complete = true
	if info, statErr := os.Stat(state.path); statErr == nil {
		m.sizes[key] = info.Size()
	}
	file := domain.RemoteFile{
		ID:              state.fileID,
		Size:            m.sizes[key],
		MimeType:        m.mimes[key],
		LocalPath:       state.path,
		IsComplete:      true,
		CanBeDownloaded: true,
	}
	hooks := append([]CompletionHook(nil), m.hooks...)
	m.mu.Unlock()

	m.metrics.RecordDownload("completed")
	m.logger.Debug().Str("file_id", state.fileID).Int64("size", file.Size).Msg("download completed")

	for _, hook := range hooks {
		hook(m.ctx, file)
	}
}

// Close cancels running downloads and waits for them to stop
func (m *DownloadManager) Close(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *DownloadManager) path(loc fileid.Location) string {
	return filepath.Join(m.dir, loc.LocalName())
}

var _ domain.FileService = (*DownloadManager)(nil)
