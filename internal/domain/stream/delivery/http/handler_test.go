package http

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/domaintest"
	musicentities "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
	streamerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/errors"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

type mockTrackStore struct {
	track *musicentities.MusicMessage
}

func (m *mockTrackStore) Get(ctx context.Context, chatID, messageID int64) (*musicentities.MusicMessage, error) {
	if m.track == nil || m.track.ChatID != chatID || m.track.MessageID != messageID {
		return nil, streamerrors.ErrTrackNotFound
	}
	return m.track, nil
}

func newTestHandler(t *testing.T, data []byte) *Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	client := &domaintest.TelegramClient{
		GetMessageFunc: func(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error) {
			return &domain.RemoteMessage{
				ChatID:  chatID,
				ID:      messageID,
				Content: domain.AudioContent{File: domain.FileRef{ID: "file-1", Size: int64(len(data))}},
			}, nil
		},
	}
	files := &domaintest.FileService{
		GetFileFunc: func(ctx context.Context, fileID string) (*domain.RemoteFile, error) {
			return &domain.RemoteFile{ID: fileID, Size: int64(len(data)), LocalPath: path, IsComplete: true}, nil
		},
	}
	tracks := &mockTrackStore{track: &musicentities.MusicMessage{
		ChatID:        -1001,
		MessageID:     7,
		FileName:      "song.mp3",
		MimeType:      "audio/mpeg",
		AudioFileSize: int64(len(data)),
	}}

	streamer := business.NewStreamer(client, files, tracks, &config.StreamConfig{
		RetryAttempts: 5,
		RetryInterval: 10 * time.Millisecond,
		ChunkSize:     4096,
	}, metrics.GetDefaultMetrics(), zerolog.Nop())

	return NewHandler(streamer, pkgerrors.NewMapper(zerolog.Nop()), metrics.GetDefaultMetrics(), zerolog.Nop())
}

func streamRequest(msgID, query, rangeHeader string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/music/stream/" + msgID + "?" + query)
	if rangeHeader != "" {
		ctx.Request.Header.Set(fasthttp.HeaderRange, rangeHeader)
	}
	ctx.SetUserValue("msgId", msgID)
	return ctx
}

func TestStream_PartialContent(t *testing.T) {
	data := []byte("0123456789abcdefghij")
	h := newTestHandler(t, data)

	ctx := streamRequest("7", "fid=-1001&size=5", "bytes=10-")
	h.Stream(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusPartialContent {
		t.Fatalf("Expected status 206, got %d", ctx.Response.StatusCode())
	}

	headers := map[string]string{
		fasthttp.HeaderContentType:        "audio/mpeg",
		fasthttp.HeaderAcceptRanges:       "bytes",
		fasthttp.HeaderContentRange:       "bytes 10-14/20",
		fasthttp.HeaderContentDisposition: `inline; filename="song.mp3"; filename*=UTF-8''song.mp3`,
	}
	for name, expected := range headers {
		if got := string(ctx.Response.Header.Peek(name)); got != expected {
			t.Errorf("Expected %s %q, got %q", name, expected, got)
		}
	}
	if ctx.Response.Header.ContentLength() != 5 {
		t.Errorf("Expected content length 5, got %d", ctx.Response.Header.ContentLength())
	}

	if body := ctx.Response.Body(); !bytes.Equal(body, data[10:15]) {
		t.Errorf("Expected body %q, got %q", data[10:15], body)
	}
}

func TestStream_WholeFile(t *testing.T) {
	data := []byte("0123456789")
	h := newTestHandler(t, data)

	ctx := streamRequest("7", "fid=-1001", "")
	h.Stream(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusPartialContent {
		t.Fatalf("Expected status 206, got %d", ctx.Response.StatusCode())
	}
	if got := string(ctx.Response.Header.Peek(fasthttp.HeaderContentRange)); got != "bytes 0-9/10" {
		t.Errorf("Expected content range bytes 0-9/10, got %s", got)
	}
	if body := ctx.Response.Body(); !bytes.Equal(body, data) {
		t.Errorf("Expected body %q, got %q", data, body)
	}
}

func TestStream_Errors(t *testing.T) {
	tests := []struct {
		name     string
		msgID    string
		query    string
		rng      string
		expected int
	}{
		{name: "bad message id", msgID: "abc", query: "fid=-1001", expected: fasthttp.StatusBadRequest},
		{name: "missing fid", msgID: "7", query: "", expected: fasthttp.StatusBadRequest},
		{name: "unknown track", msgID: "8", query: "fid=-1001", expected: fasthttp.StatusNotFound},
		{name: "range past end", msgID: "7", query: "fid=-1001", rng: "bytes=10-", expected: fasthttp.StatusBadRequest},
		{name: "size too large", msgID: "7", query: "fid=-1001&size=11", expected: fasthttp.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, []byte("0123456789"))

			ctx := streamRequest(tt.msgID, tt.query, tt.rng)
			h.Stream(ctx)

			if ctx.Response.StatusCode() != tt.expected {
				t.Fatalf("Expected status %d, got %d", tt.expected, ctx.Response.StatusCode())
			}

			var body map[string]interface{}
			if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if body["success"] != false {
				t.Errorf("Expected success=false, got %v", body["success"])
			}
		})
	}
}
