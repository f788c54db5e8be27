package s3

import (
	"context"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

const archivePrefix = "audio"

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
}

// Uploader stores objects in the archive bucket
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

// Archiver copies completed downloads into object storage
type Archiver struct {
	uploader Uploader
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewArchiver creates a new download archiver
func NewArchiver(uploader Uploader, m *metrics.Metrics, logger zerolog.Logger) *Archiver {
	return &Archiver{
		uploader: uploader,
		metrics:  m,
		logger:   logger.With().Str("component", "archiver").Logger(),
	}
}

// Archive uploads a completed download. Failures are logged and counted, never returned.
func (a *Archiver) Archive(ctx context.Context, file domain.RemoteFile) {
	if !file.IsComplete || file.LocalPath == "" {
		a.metrics.RecordArchiveUpload("skipped")
		return
	}

	logger := a.logger.With().Str("file_id", file.ID).Str("path", file.LocalPath).Logger()

	f, err := os.Open(file.LocalPath)
	if err != nil {
		a.metrics.RecordArchiveUpload("failed")
		logger.Error().Err(err).Msg("failed to open downloaded file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.metrics.RecordArchiveUpload("failed")
		logger.Error().Err(err).Msg("failed to stat downloaded file")
		return
	}

	key := ObjectKey(file.LocalPath)
	url, err := a.uploader.Upload(ctx, key, f, info.Size(), contentType(file))
	if err != nil {
		a.metrics.RecordArchiveUpload("failed")
		logger.Error().Err(err).Str("key", key).Msg("failed to archive download")
		return
	}

	a.metrics.RecordArchiveUpload("uploaded")
	logger.Debug().Str("key", key).Str("url", url).Int64("size", info.Size()).Msg("archived download")
}

// ObjectKey returns the archive key of a local download
func ObjectKey(localPath string) string {
	return path.Join(archivePrefix, filepath.Base(localPath))
}

// contentType prefers the declared type, local names usually carry no extension
func contentType(file domain.RemoteFile) string {
	if file.MimeType != "" {
		return file.MimeType
	}

	ext := strings.ToLower(filepath.Ext(file.LocalPath))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
