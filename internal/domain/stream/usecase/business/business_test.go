package business

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/domaintest"
	musicentities "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
	streamerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/errors"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
)

type mockTrackStore struct {
	GetFunc func(ctx context.Context, chatID, messageID int64) (*musicentities.MusicMessage, error)
}

func (m *mockTrackStore) Get(ctx context.Context, chatID, messageID int64) (*musicentities.MusicMessage, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, chatID, messageID)
	}
	return &musicentities.MusicMessage{
		ChatID:        chatID,
		MessageID:     messageID,
		FileName:      "Song Name.mp3",
		MimeType:      "audio/mpeg",
		AudioFileID:   "file-1",
		AudioFileSize: 1000,
	}, nil
}

func testStreamConfig() *config.StreamConfig {
	return &config.StreamConfig{
		RetryAttempts: 50,
		RetryInterval: 10 * time.Millisecond,
		ChunkSize:     16,
	}
}

func audioClient() *domaintest.TelegramClient {
	return &domaintest.TelegramClient{
		Connected: true,
		GetMessageFunc: func(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error) {
			return &domain.RemoteMessage{
				ChatID:  chatID,
				ID:      messageID,
				Content: domain.AudioContent{FileName: "Song Name.mp3", File: domain.FileRef{ID: "file-1", Size: 1000}},
			}, nil
		},
	}
}

func staticFile(file domain.RemoteFile) *domaintest.FileService {
	return &domaintest.FileService{
		GetFileFunc: func(ctx context.Context, fileID string) (*domain.RemoteFile, error) {
			f := file
			return &f, nil
		},
	}
}

func newStreamer(client domain.TelegramClient, files domain.FileService, tracks *mockTrackStore) *Streamer {
	return NewStreamer(client, files, tracks, testStreamConfig(), metrics.GetDefaultMetrics(), zerolog.Nop())
}

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func payload(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestResolveWindow(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      string
		total     int64
		wantStart int64
		wantLen   int64
		wantErr   bool
	}{
		{name: "no range", total: 1000, wantStart: 0, wantLen: 1000},
		{name: "open range", header: "bytes=100-", total: 1000, wantStart: 100, wantLen: 900},
		{name: "closed range", header: "bytes=100-199", total: 1000, wantStart: 100, wantLen: 100},
		{name: "end past total is clipped", header: "bytes=900-5000", total: 1000, wantStart: 900, wantLen: 100},
		{name: "size param", header: "bytes=100-", size: "50", total: 1000, wantStart: 100, wantLen: 50},
		{name: "start at total", header: "bytes=1000-", total: 1000, wantErr: true},
		{name: "size larger than total", size: "1001", total: 1000, wantErr: true},
		{name: "size past end", header: "bytes=900-", size: "200", total: 1000, wantErr: true},
		{name: "zero size", size: "0", total: 1000, wantErr: true},
		{name: "suffix range", header: "bytes=-100", total: 1000, wantErr: true},
		{name: "other unit", header: "items=0-", total: 1000, wantErr: true},
		{name: "end before start", header: "bytes=10-5", total: 1000, wantErr: true},
		{name: "bad size", size: "abc", total: 1000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var length int64
			r, err := parseRange(tt.header)
			if err == nil {
				var size int64
				var hasSize bool
				size, hasSize, err = parseSize(tt.size)
				if err == nil {
					length, err = resolveWindow(r, size, hasSize, tt.total)
				}
			}

			if tt.wantErr {
				if !errors.Is(err, streamerrors.ErrInvalidRange) {
					t.Errorf("Expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if r.start != tt.wantStart || length != tt.wantLen {
				t.Errorf("Expected window %d+%d, got %d+%d", tt.wantStart, tt.wantLen, r.start, length)
			}
		})
	}
}

func TestOpen_TrackNotFound(t *testing.T) {
	tracks := &mockTrackStore{
		GetFunc: func(ctx context.Context, chatID, messageID int64) (*musicentities.MusicMessage, error) {
			return nil, streamerrors.ErrTrackNotFound
		},
	}
	s := newStreamer(audioClient(), staticFile(domain.RemoteFile{}), tracks)

	if _, err := s.Open(context.Background(), -100, 5, "", ""); !errors.Is(err, streamerrors.ErrTrackNotFound) {
		t.Errorf("Expected ErrTrackNotFound, got %v", err)
	}
}

func TestOpen_FileUnavailable(t *testing.T) {
	noFile := &domaintest.TelegramClient{
		GetMessageFunc: func(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error) {
			return &domain.RemoteMessage{ChatID: chatID, ID: messageID, Content: domain.OtherContent{Kind: "text"}}, nil
		},
	}
	fetchFails := &domaintest.TelegramClient{
		GetMessageFunc: func(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error) {
			return nil, errors.New("message deleted")
		},
	}

	tests := []struct {
		name   string
		client domain.TelegramClient
		files  domain.FileService
	}{
		{name: "message fetch fails", client: fetchFails, files: staticFile(domain.RemoteFile{})},
		{name: "message without file", client: noFile, files: staticFile(domain.RemoteFile{})},
		{name: "file query fails", client: audioClient(), files: &domaintest.FileService{}},
		{name: "not downloadable", client: audioClient(), files: staticFile(domain.RemoteFile{ID: "file-1", Size: 1000})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStreamer(tt.client, tt.files, &mockTrackStore{})
			if _, err := s.Open(context.Background(), -100, 5, "", ""); !errors.Is(err, streamerrors.ErrFileUnavailable) {
				t.Errorf("Expected ErrFileUnavailable, got %v", err)
			}
		})
	}
}

func TestOpen_StartsDownload(t *testing.T) {
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, CanBeDownloaded: true})
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	stream, err := s.Open(context.Background(), -100, 5, "bytes=10-", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	downloads := files.Downloads()
	if len(downloads) != 1 || downloads[0] != "file-1" {
		t.Errorf("Expected download of file-1, got %v", downloads)
	}
	if stream.Start != 10 || stream.Length != 990 || stream.Total != 1000 {
		t.Errorf("Unexpected window: start=%d length=%d total=%d", stream.Start, stream.Length, stream.Total)
	}
	if stream.ContentRange() != "bytes 10-999/1000" {
		t.Errorf("Expected content range bytes 10-999/1000, got %s", stream.ContentRange())
	}
}

func TestOpen_CompleteFileIsNotDownloadedAgain(t *testing.T) {
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, LocalPath: "/tmp/x", IsComplete: true})
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	if _, err := s.Open(context.Background(), -100, 5, "", ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(files.Downloads()) != 0 {
		t.Errorf("Expected no downloads, got %v", files.Downloads())
	}
}

func TestOpen_FallsBackToStoredSize(t *testing.T) {
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 0, CanBeDownloaded: true})
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	stream, err := s.Open(context.Background(), -100, 5, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stream.Total != 1000 || stream.Length != 1000 {
		t.Errorf("Expected total and length 1000, got %d/%d", stream.Total, stream.Length)
	}
}

func TestOpen_RejectsInvalidRange(t *testing.T) {
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, CanBeDownloaded: true})
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	if _, err := s.Open(context.Background(), -100, 5, "bytes=1000-", ""); !errors.Is(err, streamerrors.ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
	if len(files.Downloads()) != 0 {
		t.Errorf("Expected no download for rejected range, got %v", files.Downloads())
	}
}

func TestOpen_Defaults(t *testing.T) {
	tracks := &mockTrackStore{
		GetFunc: func(ctx context.Context, chatID, messageID int64) (*musicentities.MusicMessage, error) {
			return &musicentities.MusicMessage{ChatID: chatID, MessageID: messageID, AudioFileSize: 10}, nil
		},
	}
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 10, IsComplete: true, LocalPath: "/tmp/x"})
	s := newStreamer(audioClient(), files, tracks)

	stream, err := s.Open(context.Background(), -100, 42, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stream.FileName != "42" {
		t.Errorf("Expected file name 42, got %s", stream.FileName)
	}
	if stream.MimeType != "application/octet-stream" {
		t.Errorf("Expected octet-stream, got %s", stream.MimeType)
	}
}

func TestStream_ContentDisposition(t *testing.T) {
	st := &Stream{FileName: "Song Name (live).mp3"}
	expected := `inline; filename="Song%20Name%20%28live%29.mp3"; filename*=UTF-8''Song%20Name%20%28live%29.mp3`
	if st.ContentDisposition() != expected {
		t.Errorf("Expected %s, got %s", expected, st.ContentDisposition())
	}

	st = &Stream{FileName: "Песня.mp3"}
	expected = `inline; filename="%D0%9F%D0%B5%D1%81%D0%BD%D1%8F.mp3"; filename*=UTF-8''%D0%9F%D0%B5%D1%81%D0%BD%D1%8F.mp3`
	if st.ContentDisposition() != expected {
		t.Errorf("Expected %s, got %s", expected, st.ContentDisposition())
	}
}

func TestCopy_CompleteFile(t *testing.T) {
	data := payload(1000)
	path := writeTempFile(t, data)
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, LocalPath: path, IsComplete: true})
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	stream, err := s.Open(context.Background(), -100, 5, "bytes=100-", "200")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var out bytes.Buffer
	n, err := stream.Copy(context.Background(), &out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 200 {
		t.Errorf("Expected 200 bytes written, got %d", n)
	}
	if !bytes.Equal(out.Bytes(), data[100:300]) {
		t.Error("Expected copied bytes to match the requested window")
	}
}

func TestCopy_FollowsGrowingFile(t *testing.T) {
	data := payload(1000)
	path := writeTempFile(t, data[:100])

	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, LocalPath: path, CanBeDownloaded: true})
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	stream, err := s.Open(context.Background(), -100, 5, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.Write(data[100:])
	}()

	var out bytes.Buffer
	n, err := stream.Copy(context.Background(), &out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 1000 || !bytes.Equal(out.Bytes(), data) {
		t.Errorf("Expected the whole file, got %d bytes", n)
	}
}

func TestCopy_WaitsForLocalPath(t *testing.T) {
	data := payload(64)
	path := writeTempFile(t, data)

	calls := 0
	files := &domaintest.FileService{
		GetFileFunc: func(ctx context.Context, fileID string) (*domain.RemoteFile, error) {
			calls++
			if calls < 3 {
				return &domain.RemoteFile{ID: fileID, Size: 64, CanBeDownloaded: true}, nil
			}
			return &domain.RemoteFile{ID: fileID, Size: 64, LocalPath: path, IsComplete: true}, nil
		},
	}
	s := newStreamer(audioClient(), files, &mockTrackStore{})

	stream, err := s.Open(context.Background(), -100, 5, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var out bytes.Buffer
	if _, err := stream.Copy(context.Background(), &out); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Errorf("Expected 64 bytes, got %d", out.Len())
	}
}

func TestCopy_BudgetExhaustedKeepsPartialOutput(t *testing.T) {
	data := payload(1000)
	path := writeTempFile(t, data[:300])

	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, LocalPath: path, CanBeDownloaded: true})
	s := NewStreamer(audioClient(), files, &mockTrackStore{}, &config.StreamConfig{
		RetryAttempts: 3,
		RetryInterval: time.Millisecond,
		ChunkSize:     64,
	}, metrics.GetDefaultMetrics(), zerolog.Nop())

	stream, err := s.Open(context.Background(), -100, 5, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var out bytes.Buffer
	n, err := stream.Copy(context.Background(), &out)
	if err == nil {
		t.Fatal("Expected error when the download never finishes")
	}
	if n != 300 || !bytes.Equal(out.Bytes(), data[:300]) {
		t.Errorf("Expected 300 partial bytes, got %d", n)
	}
}

func TestCopy_StopsOnCancel(t *testing.T) {
	files := staticFile(domain.RemoteFile{ID: "file-1", Size: 1000, CanBeDownloaded: true})
	s := NewStreamer(audioClient(), files, &mockTrackStore{}, &config.StreamConfig{
		RetryAttempts: 1000,
		RetryInterval: time.Second,
		ChunkSize:     64,
	}, metrics.GetDefaultMetrics(), zerolog.Nop())

	stream, err := s.Open(context.Background(), -100, 5, "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	var out bytes.Buffer
	if _, err := stream.Copy(ctx, &out); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Expected prompt return after cancel, took %v", elapsed)
	}
}
