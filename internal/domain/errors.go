package domain

import (
	"errors"

	pkgerrors "github.com/Conte777/NewsFlow/services/music-service/pkg/errors"
)

var (
	// ErrChatNotFound is returned when Telegram does not know the chat
	ErrChatNotFound = pkgerrors.NewNotFoundError("chat not found")

	// ErrMessageNotFound is returned when the remote message cannot be fetched
	ErrMessageNotFound = pkgerrors.NewNotFoundError("message not found")

	// ErrFolderNotFound is returned when a folder id is absent on the remote side
	ErrFolderNotFound = pkgerrors.NewNotFoundError("folder not found")

	// ErrFileNotFound is returned when a file id cannot be resolved
	ErrFileNotFound = pkgerrors.NewNotFoundError("file not found")

	// ErrNotConnected is returned when operation requires connection
	ErrNotConnected = pkgerrors.NewServiceUnavailableError("not connected to Telegram")

	// ErrAuthenticationFailed is returned when authentication fails
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidFileID is returned when a file id cannot be decoded
	ErrInvalidFileID = errors.New("invalid file id")
)
