package s3

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/telegram/fileid"
)

type mockUploader struct {
	UploadFunc func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)

	keys   []string
	bodies [][]byte
	types  []string
}

func (m *mockUploader) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if int64(len(body)) != size {
		return "", errors.New("size mismatch")
	}

	m.keys = append(m.keys, key)
	m.bodies = append(m.bodies, body)
	m.types = append(m.types, contentType)

	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, reader, size, contentType)
	}
	return "http://minio/" + key, nil
}

func TestArchive_UploadsCompletedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc_42.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	uploader := &mockUploader{}
	archiver := NewArchiver(uploader, metrics.GetDefaultMetrics(), zerolog.Nop())

	archiver.Archive(context.Background(), domain.RemoteFile{ID: "f", LocalPath: path, IsComplete: true})

	if len(uploader.keys) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(uploader.keys))
	}
	if uploader.keys[0] != "audio/doc_42.mp3" {
		t.Errorf("Expected key audio/doc_42.mp3, got %s", uploader.keys[0])
	}
	if string(uploader.bodies[0]) != "audio" {
		t.Errorf("Expected body audio, got %s", uploader.bodies[0])
	}
	if uploader.types[0] != "audio/mpeg" {
		t.Errorf("Expected content type audio/mpeg, got %s", uploader.types[0])
	}
}

func TestArchive_UsesDeclaredMimeType(t *testing.T) {
	name := fileid.Location{Type: fileid.TypeAudio, ID: 42}.LocalName()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	uploader := &mockUploader{}
	archiver := NewArchiver(uploader, metrics.GetDefaultMetrics(), zerolog.Nop())

	archiver.Archive(context.Background(), domain.RemoteFile{
		ID:         "f",
		MimeType:   "audio/mpeg",
		LocalPath:  path,
		IsComplete: true,
	})

	if len(uploader.keys) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(uploader.keys))
	}
	if uploader.keys[0] != "audio/42" {
		t.Errorf("Expected key audio/42, got %s", uploader.keys[0])
	}
	if uploader.types[0] != "audio/mpeg" {
		t.Errorf("Expected content type audio/mpeg, got %s", uploader.types[0])
	}
}

func TestArchive_SkipsIncompleteOrMissingFiles(t *testing.T) {
	uploader := &mockUploader{}
	archiver := NewArchiver(uploader, metrics.GetDefaultMetrics(), zerolog.Nop())

	archiver.Archive(context.Background(), domain.RemoteFile{ID: "f", LocalPath: "/tmp/partial", IsComplete: false})
	archiver.Archive(context.Background(), domain.RemoteFile{ID: "f", IsComplete: true})
	archiver.Archive(context.Background(), domain.RemoteFile{ID: "f", LocalPath: filepath.Join(t.TempDir(), "gone"), IsComplete: true})

	if len(uploader.keys) != 0 {
		t.Errorf("Expected no uploads, got %v", uploader.keys)
	}
}

func TestArchive_UploadErrorIsSwallowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.unknownext")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	uploader := &mockUploader{
		UploadFunc: func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
			return "", errors.New("bucket unavailable")
		},
	}
	archiver := NewArchiver(uploader, metrics.GetDefaultMetrics(), zerolog.Nop())

	archiver.Archive(context.Background(), domain.RemoteFile{ID: "f", LocalPath: path, IsComplete: true})

	if len(uploader.keys) != 1 {
		t.Errorf("Expected one attempted upload, got %d", len(uploader.keys))
	}
	if uploader.types[0] != "application/octet-stream" {
		t.Errorf("Expected octet-stream for unknown extension, got %s", uploader.types[0])
	}
}

func TestClient_ObjectURL(t *testing.T) {
	client, err := NewClient(&config.S3Config{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "music-archive",
		PublicURL: "http://localhost:9000",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := "http://localhost:9000/music-archive/audio/a.mp3"
	if got := client.ObjectURL("audio/a.mp3"); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}
