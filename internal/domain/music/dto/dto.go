package dto

import (
	"time"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
)

// TrackResponse is one entry of GET /music/folder/{fid}
type TrackResponse struct {
	FolderID        int64   `json:"folderId"`
	MusicID         int64   `json:"musicId"`
	FileName        *string `json:"fileName"`
	MimeType        *string `json:"mimeType"`
	Title           *string `json:"title"`
	Artist          *string `json:"artist"`
	DurationSeconds *int    `json:"durationSeconds"`
	AudioFileSize   int64   `json:"audioFileSize"`
}

// NewTrackResponse converts a stored message, reporting empty fields as null
func NewTrackResponse(m entities.MusicMessage) TrackResponse {
	return TrackResponse{
		FolderID:        m.ChatID,
		MusicID:         m.MessageID,
		FileName:        nonEmpty(m.FileName),
		MimeType:        nonEmpty(m.MimeType),
		Title:           nonEmpty(m.Title),
		Artist:          nonEmpty(m.Performer),
		DurationSeconds: nonZero(m.DurationSeconds),
		AudioFileSize:   m.AudioFileSize,
	}
}

// MusicIngestedEvent is published after a music message is stored
type MusicIngestedEvent struct {
	ChatID          int64     `json:"chat_id"`
	MessageID       int64     `json:"message_id"`
	SentAt          time.Time `json:"sent_at"`
	FileName        string    `json:"file_name,omitempty"`
	MimeType        string    `json:"mime_type,omitempty"`
	Title           string    `json:"title,omitempty"`
	Performer       string    `json:"performer,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	AudioFileID     string    `json:"audio_file_id"`
	AudioFileSize   int64     `json:"audio_file_size"`
}

// NewMusicIngestedEvent builds the event payload of a stored message
func NewMusicIngestedEvent(m entities.MusicMessage) MusicIngestedEvent {
	return MusicIngestedEvent{
		ChatID:          m.ChatID,
		MessageID:       m.MessageID,
		SentAt:          m.SentAt,
		FileName:        m.FileName,
		MimeType:        m.MimeType,
		Title:           m.Title,
		Performer:       m.Performer,
		DurationSeconds: m.DurationSeconds,
		AudioFileID:     m.AudioFileID,
		AudioFileSize:   m.AudioFileSize,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
