package cache

import (
	"sync/atomic"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/rs/zerolog"
)

// FolderSnapshot holds the latest folder list pushed by Telegram.
// Replace swaps a private copy, so readers never see a partial update.
type FolderSnapshot struct {
	folders atomic.Pointer[[]domain.Folder]
	logger  zerolog.Logger
}

// NewFolderSnapshot creates an empty snapshot
func NewFolderSnapshot(logger zerolog.Logger) *FolderSnapshot {
	return &FolderSnapshot{
		logger: logger.With().Str("component", "folder_snapshot").Logger(),
	}
}

// Replace atomically swaps the whole folder list
func (s *FolderSnapshot) Replace(folders []domain.Folder) {
	snapshot := make([]domain.Folder, len(folders))
	copy(snapshot, folders)
	s.folders.Store(&snapshot)

	s.logger.Debug().
		Int("folders", len(snapshot)).
		Msg("folder snapshot replaced")
}

// Current returns the latest snapshot, empty until the first Replace.
// Callers must not modify the returned slice.
func (s *FolderSnapshot) Current() []domain.Folder {
	folders := s.folders.Load()
	if folders == nil {
		return nil
	}
	return *folders
}

var _ domain.FolderSnapshot = (*FolderSnapshot)(nil)
