package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/dto"
	channelerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

type mockCatalogue struct {
	ListFoldersFunc        func(ctx context.Context) ([]dto.FolderResponse, error)
	ListRemoteChannelsFunc func(ctx context.Context, prefix string) ([]string, error)
}

func (m *mockCatalogue) ListFolders(ctx context.Context) ([]dto.FolderResponse, error) {
	return m.ListFoldersFunc(ctx)
}

func (m *mockCatalogue) ListRemoteChannels(ctx context.Context, prefix string) ([]string, error) {
	return m.ListRemoteChannelsFunc(ctx, prefix)
}

func newHandler(c *mockCatalogue) *Handler {
	return NewHandler(c, pkgerrors.NewMapper(zerolog.Nop()), zerolog.Nop())
}

func TestListFolders(t *testing.T) {
	h := newHandler(&mockCatalogue{
		ListFoldersFunc: func(ctx context.Context) ([]dto.FolderResponse, error) {
			return []dto.FolderResponse{{FolderID: -1001, FolderName: "Rock"}}, nil
		},
	})

	ctx := &fasthttp.RequestCtx{}
	h.ListFolders(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("Expected status 200, got %d", ctx.Response.StatusCode())
	}

	var body []dto.FolderResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body) != 1 || body[0].FolderID != -1001 || body[0].FolderName != "Rock" {
		t.Errorf("Unexpected folders %+v", body)
	}
}

func TestListChannels_PassesPrefix(t *testing.T) {
	h := newHandler(&mockCatalogue{
		ListRemoteChannelsFunc: func(ctx context.Context, prefix string) ([]string, error) {
			if prefix != "Music" {
				t.Errorf("Expected prefix Music, got %q", prefix)
			}
			return []string{"Music Rock"}, nil
		},
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/music/channels?prefix=Music")
	h.ListChannels(ctx)

	if string(ctx.Response.Body()) != `["Music Rock"]` {
		t.Errorf("Unexpected body %s", ctx.Response.Body())
	}
}

func TestListChannels_NotConnected(t *testing.T) {
	h := newHandler(&mockCatalogue{
		ListRemoteChannelsFunc: func(ctx context.Context, prefix string) ([]string, error) {
			return nil, channelerrors.ErrNotConnected
		},
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/music/channels")
	h.ListChannels(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", ctx.Response.StatusCode())
	}
}
