package httputil

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
)

// Response represents the error envelope returned by the API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorMapper resolves an error into an HTTP status and a client message
type ErrorMapper interface {
	MapErrorToHTTP(err error) (int, string)
}

// WriteJSON writes data as a bare JSON document with status 200
func WriteJSON(ctx *fasthttp.RequestCtx, data interface{}) {
	writeJSON(ctx, data, fasthttp.StatusOK)
}

// WriteErrorResponse writes an error JSON response
func WriteErrorResponse(ctx *fasthttp.RequestCtx, message string, status int) {
	resp := Response{
		Success: false,
		Error:   message,
	}
	writeJSON(ctx, resp, status)
}

// WriteError maps err through mapper and writes the error envelope
func WriteError(ctx *fasthttp.RequestCtx, mapper ErrorMapper, err error) {
	status, message := mapper.MapErrorToHTTP(err)
	WriteErrorResponse(ctx, message, status)
}

// WriteHealthResponse writes a health check response
func WriteHealthResponse(ctx *fasthttp.RequestCtx, data interface{}, healthy bool) {
	status := fasthttp.StatusOK
	if !healthy {
		status = fasthttp.StatusServiceUnavailable
	}
	writeJSON(ctx, data, status)
}

// writeJSON writes JSON response to context
func writeJSON(ctx *fasthttp.RequestCtx, data interface{}, status int) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)

	body, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBody([]byte(`{"success":false,"error":"failed to marshal response"}`))
		return
	}

	ctx.SetBody(body)
}
