package errors

import (
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

var (
	ErrChannelNotFound = pkgerrors.NewNotFoundError("channel not found")
	ErrNotConnected    = pkgerrors.NewServiceUnavailableError("telegram client is not connected")
)
