package http

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/dto"
	musicerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/errors"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/httputil"
)

// TrackLister lists the stored tracks of a chat
type TrackLister interface {
	ListTracks(ctx context.Context, chatID int64) ([]dto.TrackResponse, error)
}

// Handler handles music catalogue HTTP requests
type Handler struct {
	library TrackLister
	mapper  httputil.ErrorMapper
	logger  zerolog.Logger
}

// NewHandler creates a new music handler
func NewHandler(library TrackLister, mapper httputil.ErrorMapper, logger zerolog.Logger) *Handler {
	return &Handler{
		library: library,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "music").Logger(),
	}
}

// ListTracks handles GET /music/folder/{fid}
func (h *Handler) ListTracks(ctx *fasthttp.RequestCtx) {
	chatID, err := ParseChatID(ctx.UserValue("fid"))
	if err != nil {
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	tracks, err := h.library.ListTracks(ctx, chatID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to list tracks")
		httputil.WriteError(ctx, h.mapper, err)
		return
	}

	httputil.WriteJSON(ctx, tracks)
}

// ParseChatID parses a chat id path or query value
func ParseChatID(value interface{}) (int64, error) {
	raw, _ := value.(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, musicerrors.ErrInvalidChatID
	}
	return id, nil
}
