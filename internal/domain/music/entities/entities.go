package entities

import "time"

// MusicMessage is a stored audio-bearing message.
// (ChatID, MessageID) identifies it; it is never modified after insert.
type MusicMessage struct {
	ChatID          int64
	MessageID       int64
	SentAt          time.Time
	FileName        string
	MimeType        string
	Title           string
	Performer       string
	DurationSeconds int
	CoverFileID     string
	CoverWidth      int
	CoverHeight     int
	AudioFileID     string
	AudioFileSize   int64
	CreatedAt       time.Time
}
