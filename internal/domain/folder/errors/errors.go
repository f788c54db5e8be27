package errors

import (
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

var (
	// ErrFolderNotFound is returned when the folder name is absent from the snapshot
	ErrFolderNotFound = domain.ErrFolderNotFound
)
