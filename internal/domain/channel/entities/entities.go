package entities

import (
	"time"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

// Stored chat type tags
const (
	ChatTypePrivate    = "private"
	ChatTypeSecret     = "secret"
	ChatTypeBasicGroup = "basic_group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

// Channel is a folder member chat tracked for music
type Channel struct {
	ChatID     int64
	Title      string
	Username   string
	ChatType   string
	FolderName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChatType maps a remote chat kind to its stored tag; unknown kinds are kept verbatim
func ChatType(chat domain.RemoteChat) string {
	switch chat.Kind {
	case domain.ChatKindPrivate:
		return ChatTypePrivate
	case domain.ChatKindSecret:
		return ChatTypeSecret
	case domain.ChatKindBasicGroup:
		return ChatTypeBasicGroup
	case domain.ChatKindSupergroup:
		if chat.IsChannel {
			return ChatTypeChannel
		}
		return ChatTypeSupergroup
	default:
		return chat.Kind
	}
}

// FromRemote builds the stored form of a resolved folder chat
func FromRemote(chat domain.RemoteChat, folderName string) Channel {
	return Channel{
		ChatID:     chat.ID,
		Title:      chat.Title,
		Username:   chat.Username,
		ChatType:   ChatType(chat),
		FolderName: folderName,
	}
}

// SameAs reports whether the tracked fields of both channels match
func (c Channel) SameAs(other Channel) bool {
	return c.Title == other.Title &&
		c.Username == other.Username &&
		c.ChatType == other.ChatType &&
		c.FolderName == other.FolderName
}
