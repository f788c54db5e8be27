package http

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	musichttp "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/delivery/http"
	streamerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/errors"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/stream/usecase/business"
	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/httputil"
)

// StreamOpener opens byte windows of stored tracks
type StreamOpener interface {
	Open(ctx context.Context, chatID, messageID int64, rangeHeader, sizeParam string) (*business.Stream, error)
}

// Handler handles audio streaming requests
type Handler struct {
	streamer StreamOpener
	mapper   httputil.ErrorMapper
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewHandler creates a new stream handler
func NewHandler(streamer StreamOpener, mapper httputil.ErrorMapper, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		streamer: streamer,
		mapper:   mapper,
		metrics:  m,
		logger:   logger.With().Str("handler", "stream").Logger(),
	}
}

// Stream handles GET /music/stream/{msgId}?fid=<chatId>&size=<n>
func (h *Handler) Stream(ctx *fasthttp.RequestCtx) {
	messageID, err := strconv.ParseInt(userString(ctx, "msgId"), 10, 64)
	if err != nil || messageID <= 0 {
		h.fail(ctx, streamerrors.ErrInvalidMessageID)
		return
	}

	chatID, err := musichttp.ParseChatID(string(ctx.QueryArgs().Peek("fid")))
	if err != nil {
		h.fail(ctx, err)
		return
	}

	stream, err := h.streamer.Open(ctx, chatID, messageID,
		string(ctx.Request.Header.Peek(fasthttp.HeaderRange)),
		string(ctx.QueryArgs().Peek("size")),
	)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusPartialContent)
	ctx.SetContentType(stream.MimeType)
	ctx.Response.Header.Set(fasthttp.HeaderContentDisposition, stream.ContentDisposition())
	ctx.Response.Header.Set(fasthttp.HeaderAcceptRanges, "bytes")
	ctx.Response.Header.Set(fasthttp.HeaderContentRange, stream.ContentRange())
	h.metrics.RecordStreamRequest(fasthttp.StatusPartialContent)

	logger := h.logger.With().
		Int64("chat_id", chatID).
		Int64("message_id", messageID).
		Str("range", stream.ContentRange()).
		Logger()

	copyCtx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	go func() {
		defer cancel()
		n, err := stream.Copy(copyCtx, pw)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.ErrClosedPipe) {
			logger.Warn().Err(err).Int64("written", n).Msg("stream ended early")
		}
		// a short body makes the server drop the connection instead of hanging the client
		pw.CloseWithError(err)
	}()

	ctx.SetBodyStream(&streamBody{PipeReader: pr, cancel: cancel}, int(stream.Length))
}

func (h *Handler) fail(ctx *fasthttp.RequestCtx, err error) {
	httputil.WriteError(ctx, h.mapper, err)
	h.metrics.RecordStreamRequest(ctx.Response.StatusCode())
}

// streamBody stops the copy loop once the server is done with the body
type streamBody struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (b *streamBody) Close() error {
	b.cancel()
	return b.PipeReader.Close()
}

func userString(ctx *fasthttp.RequestCtx, key string) string {
	value, _ := ctx.UserValue(key).(string)
	return value
}
