package errors

import (
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

var (
	ErrTrackNotFound = pkgerrors.NewNotFoundError("music message not found")
	ErrInvalidChatID = pkgerrors.NewValidationError("invalid folder id")
)
