package errors

import (
	musicerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

var (
	ErrTrackNotFound    = musicerrors.ErrTrackNotFound
	ErrFileUnavailable  = pkgerrors.NewNotFoundError("audio file not available")
	ErrInvalidRange     = pkgerrors.NewValidationError("invalid range")
	ErrInvalidMessageID = pkgerrors.NewValidationError("invalid message id")
)
