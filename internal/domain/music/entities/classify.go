package entities

import (
	"strings"
	"time"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

// IsMusic reports whether a message content is worth storing.
// Native audio always is; documents only with an audio-looking MIME type.
func IsMusic(content domain.Content) bool {
	switch c := content.(type) {
	case domain.AudioContent:
		return true
	case domain.DocumentContent:
		mime := c.MimeType
		if mime == "" {
			return false
		}
		return strings.HasPrefix(mime, "audio/") || strings.Contains(mime, "mpeg") || strings.Contains(mime, "ogg")
	default:
		return false
	}
}

// FromRemote converts a remote message into a MusicMessage, ok is false for non-music content
func FromRemote(msg domain.RemoteMessage) (MusicMessage, bool) {
	if !IsMusic(msg.Content) {
		return MusicMessage{}, false
	}

	record := MusicMessage{
		ChatID:    msg.ChatID,
		MessageID: msg.ID,
		SentAt:    time.Unix(msg.Date, 0).UTC(),
	}

	var cover *domain.Thumbnail

	switch c := msg.Content.(type) {
	case domain.AudioContent:
		record.FileName = c.FileName
		record.MimeType = c.MimeType
		record.Title = c.Title
		record.Performer = c.Performer
		record.DurationSeconds = c.Duration
		record.AudioFileID = c.File.ID
		record.AudioFileSize = c.File.Size

		cover = c.AlbumCover
		if cover == nil && len(c.ExternalCovers) > 0 {
			cover = &c.ExternalCovers[0]
		}
	case domain.DocumentContent:
		record.FileName = c.FileName
		record.MimeType = c.MimeType
		record.AudioFileID = c.File.ID
		record.AudioFileSize = c.File.Size
		cover = c.Thumbnail
	}

	if cover != nil {
		record.CoverFileID = cover.File.ID
		record.CoverWidth = cover.Width
		record.CoverHeight = cover.Height
	}

	return record, true
}
