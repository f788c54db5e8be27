package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/music-service/pkg/httputil"
)

// HeaderRequestID carries the request correlation id
const HeaderRequestID = "X-Request-ID"

// RequestID assigns every request an id, echoes it in the response and logs the outcome
func RequestID(logger zerolog.Logger) httputil.Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			requestID := string(ctx.Request.Header.Peek(HeaderRequestID))
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx.SetUserValue(HeaderRequestID, requestID)
			ctx.Response.Header.Set(HeaderRequestID, requestID)

			start := time.Now()
			next(ctx)

			logger.Debug().
				Str("request_id", requestID).
				Str("method", string(ctx.Method())).
				Str("path", string(ctx.Path())).
				Int("status", ctx.Response.StatusCode()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		}
	}
}

// GetRequestID returns the id assigned by RequestID
func GetRequestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(HeaderRequestID).(string)
	return id
}
