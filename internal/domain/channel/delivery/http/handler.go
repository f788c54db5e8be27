package http

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/dto"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/httputil"
)

// ChannelCatalogue lists tracked and remote channels
type ChannelCatalogue interface {
	ListFolders(ctx context.Context) ([]dto.FolderResponse, error)
	ListRemoteChannels(ctx context.Context, prefix string) ([]string, error)
}

// Handler handles channel HTTP requests
type Handler struct {
	catalogue ChannelCatalogue
	mapper    httputil.ErrorMapper
	logger    zerolog.Logger
}

// NewHandler creates a new channel handler
func NewHandler(catalogue ChannelCatalogue, mapper httputil.ErrorMapper, logger zerolog.Logger) *Handler {
	return &Handler{
		catalogue: catalogue,
		mapper:    mapper,
		logger:    logger.With().Str("handler", "channel").Logger(),
	}
}

// ListFolders handles GET /music/folders
func (h *Handler) ListFolders(ctx *fasthttp.RequestCtx) {
	folders, err := h.catalogue.ListFolders(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list folders")
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	httputil.WriteJSON(ctx, folders)
}

// ListChannels handles GET /music/channels?prefix=
func (h *Handler) ListChannels(ctx *fasthttp.RequestCtx) {
	prefix := string(ctx.QueryArgs().Peek("prefix"))

	names, err := h.catalogue.ListRemoteChannels(ctx, prefix)
	if err != nil {
		h.logger.Error().Err(err).Str("prefix", prefix).Msg("failed to list channels")
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	httputil.WriteJSON(ctx, names)
}
