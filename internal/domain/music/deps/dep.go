package deps

import (
	"context"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
)

// MessageRepository defines interface for music message storage
type MessageRepository interface {
	// MaxMessageID returns the newest stored message id of a chat, found is false for an empty chat
	MaxMessageID(ctx context.Context, chatID int64) (id int64, found bool, err error)
	Exists(ctx context.Context, chatID, messageID int64) (bool, error)
	// SaveBatch stores messages in one transaction and returns the ones actually inserted
	SaveBatch(ctx context.Context, messages []entities.MusicMessage) ([]entities.MusicMessage, error)
	// Save stores one message, created is false when it was already stored
	Save(ctx context.Context, message entities.MusicMessage) (created bool, err error)
	ListByChat(ctx context.Context, chatID int64) ([]entities.MusicMessage, error)
	Get(ctx context.Context, chatID, messageID int64) (*entities.MusicMessage, error)
}

// EventPublisher announces newly stored music messages
type EventPublisher interface {
	PublishMusicIngested(ctx context.Context, message entities.MusicMessage) error
}

// FolderMembership answers whether a chat belongs to a folder
type FolderMembership interface {
	ContainsChat(ctx context.Context, folderName string, chatID int64) (bool, error)
}
