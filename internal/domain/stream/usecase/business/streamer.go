package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/deps"
	streamerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/errors"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

const defaultMimeType = "application/octet-stream"

// Streamer serves byte windows of audio files that may still be downloading
type Streamer struct {
	client  domain.TelegramClient
	files   domain.FileService
	tracks  deps.TrackStore
	cfg     *config.StreamConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewStreamer creates a new audio streamer
func NewStreamer(
	client domain.TelegramClient,
	files domain.FileService,
	tracks deps.TrackStore,
	cfg *config.StreamConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Streamer {
	return &Streamer{
		client:  client,
		files:   files,
		tracks:  tracks,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "streamer").Logger(),
	}
}

// Stream is a validated response window over one remote audio file
type Stream struct {
	FileID   string
	FileName string
	MimeType string
	Start    int64
	Length   int64
	Total    int64

	path     string
	streamer *Streamer
}

// Open resolves the file behind a stored message and validates the requested window.
// A missing local copy is downloaded in the background.
func (s *Streamer) Open(ctx context.Context, chatID, messageID int64, rangeHeader, sizeParam string) (*Stream, error) {
	logger := s.logger.With().Int64("chat_id", chatID).Int64("message_id", messageID).Logger()

	track, err := s.tracks.Get(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}

	msg, err := s.client.GetMessage(ctx, chatID, messageID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch message")
		return nil, fmt.Errorf("%w: %v", streamerrors.ErrFileUnavailable, err)
	}

	ref, ok := domain.AttachedFile(msg.Content)
	if !ok {
		logger.Warn().Str("content", domain.ContentKind(msg.Content)).Msg("Message has no audio file")
		return nil, streamerrors.ErrFileUnavailable
	}

	file, err := s.files.GetFile(ctx, ref.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to query file")
		return nil, fmt.Errorf("%w: %v", streamerrors.ErrFileUnavailable, err)
	}

	total := file.Size
	if total == 0 {
		total = track.AudioFileSize
	}

	window, err := parseRange(rangeHeader)
	if err != nil {
		return nil, err
	}
	size, hasSize, err := parseSize(sizeParam)
	if err != nil {
		return nil, err
	}
	length, err := resolveWindow(window, size, hasSize, total)
	if err != nil {
		logger.Warn().
			Int64("start", window.start).
			Int64("size", size).
			Int64("total", total).
			Msg("Rejected range")
		return nil, err
	}

	if !file.IsComplete {
		if !file.CanBeDownloaded {
			return nil, streamerrors.ErrFileUnavailable
		}
		if err := s.files.DownloadFile(ctx, ref.ID); err != nil {
			logger.Warn().Err(err).Msg("Failed to start download")
		}
	}

	fileName := track.FileName
	if fileName == "" {
		fileName = fmt.Sprintf("%d", messageID)
	}
	mimeType := track.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	return &Stream{
		FileID:   ref.ID,
		FileName: fileName,
		MimeType: mimeType,
		Start:    window.start,
		Length:   length,
		Total:    total,
		path:     file.LocalPath,
		streamer: s,
	}, nil
}

// ContentRange returns the Content-Range header value
func (st *Stream) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", st.Start, st.Start+st.Length-1, st.Total)
}

// ContentDisposition returns an inline disposition carrying the percent-encoded file name
func (st *Stream) ContentDisposition() string {
	encoded := encodeFileName(st.FileName)
	return fmt.Sprintf(`inline; filename="%s"; filename*=UTF-8''%s`, encoded, encoded)
}

// Copy writes the window to w while the file is still downloading.
// It gives up after the configured number of waits; bytes already written stay written.
func (st *Stream) Copy(ctx context.Context, w io.Writer) (int64, error) {
	s := st.streamer
	offset, remaining := st.Start, st.Length
	path := st.path
	buf := make([]byte, s.cfg.ChunkSize)

	var written int64
	waits := 0

	wait := func() error {
		waits++
		if waits > s.cfg.RetryAttempts {
			return errBudgetExhausted
		}
		s.metrics.RecordStreamWait()

		timer := time.NewTimer(s.cfg.RetryInterval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}

	finish := func(err error) (int64, error) {
		truncated := remaining > 0
		s.metrics.RecordStreamResult(written, truncated)
		if errors.Is(err, errBudgetExhausted) {
			s.logger.Warn().
				Str("file_id", st.FileID).
				Int64("written", written).
				Int64("missing", remaining).
				Msg("File not available in time, stream truncated")
		}
		return written, err
	}

	for remaining > 0 {
		if path == "" {
			if err := wait(); err != nil {
				return finish(err)
			}
			path = st.refreshPath(ctx)
			continue
		}

		n, err := copyAvailable(path, w, offset, remaining, buf)
		offset += n
		remaining -= n
		written += n

		switch {
		case errors.Is(err, os.ErrNotExist):
			if err := wait(); err != nil {
				return finish(err)
			}
			path = st.refreshPath(ctx)
		case err != nil:
			return finish(err)
		case remaining > 0 && n == 0:
			if err := wait(); err != nil {
				return finish(err)
			}
		}
	}

	return finish(nil)
}

var errBudgetExhausted = errors.New("stream wait budget exhausted")

func (st *Stream) refreshPath(ctx context.Context) string {
	file, err := st.streamer.files.GetFile(ctx, st.FileID)
	if err != nil {
		return ""
	}
	return file.LocalPath
}

// copyAvailable copies up to limit bytes starting at offset from what is currently on disk
func copyAvailable(path string, w io.Writer, offset, limit int64, buf []byte) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	available := info.Size() - offset
	if available <= 0 {
		return 0, nil
	}
	if available > limit {
		available = limit
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	return io.CopyBuffer(w, io.LimitReader(f, available), buf)
}

// encodeFileName percent-encodes everything except RFC 3986 unreserved characters
func encodeFileName(name string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
