package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

func TestMapper_MapErrorToHTTP(t *testing.T) {
	mapper := NewMapper(zerolog.Nop())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "nil", err: nil, wantStatus: fasthttp.StatusOK, wantMsg: ""},
		{name: "validation", err: NewValidationError("bad range"), wantStatus: fasthttp.StatusBadRequest, wantMsg: "bad range"},
		{name: "wrapped validation", err: fmt.Errorf("open: %w", NewValidationErrorf("bad size %d", 5)), wantStatus: fasthttp.StatusBadRequest, wantMsg: "bad size 5"},
		{name: "unauthorized", err: NewUnauthorizedError("Invalid API Key"), wantStatus: fasthttp.StatusUnauthorized, wantMsg: "Invalid API Key"},
		{name: "not found hides cause", err: WrapNotFound("file not found", errors.New("rpc error")), wantStatus: fasthttp.StatusNotFound, wantMsg: "file not found"},
		{name: "unavailable", err: NewServiceUnavailableError("down"), wantStatus: fasthttp.StatusServiceUnavailable, wantMsg: "down"},
		{name: "internal", err: NewInternalError("boom"), wantStatus: fasthttp.StatusInternalServerError, wantMsg: "boom"},
		{name: "unknown", err: errors.New("raw"), wantStatus: fasthttp.StatusInternalServerError, wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapper.MapErrorToHTTP(tt.err)
			if status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
			}
			if msg != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, msg)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewNotFoundError("missing"))
	if !IsNotFound(err) {
		t.Error("Expected wrapped NotFoundError to be detected")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("Expected plain error not to be NotFoundError")
	}
	if !IsValidation(NewValidationError("x")) {
		t.Error("Expected ValidationError to be detected")
	}
}
