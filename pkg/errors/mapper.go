package errors

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Mapper translates errors into HTTP status codes and client-safe messages
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper creates a new error mapper
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapErrorToHTTP maps an error to HTTP status code and message.
// Wrapped causes are never exposed; untyped errors become a generic 500.
func (m *Mapper) MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return fasthttp.StatusOK, ""
	}

	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		m.logger.Error().Err(err).Msg("unknown error")
		return fasthttp.StatusInternalServerError, "internal server error"
	}

	status := httpErr.HTTPStatus()
	if status == fasthttp.StatusInternalServerError {
		m.logger.Error().Err(err).Msg("internal server error")
	}

	return status, httpErr.PublicMessage()
}
