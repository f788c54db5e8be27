package entities

import "time"

// MusicMessageModel is a GORM model for music_messages table
type MusicMessageModel struct {
	ID              uint      `gorm:"primaryKey"`
	ChatID          int64     `gorm:"not null;uniqueIndex:uq_music_messages_chat_message"`
	MessageID       int64     `gorm:"not null;uniqueIndex:uq_music_messages_chat_message"`
	SentAt          time.Time `gorm:"not null"`
	FileName        *string
	MimeType        *string
	Title           *string
	Performer       *string
	DurationSeconds *int
	CoverFileID     *string
	CoverWidth      *int
	CoverHeight     *int
	AudioFileID     string    `gorm:"not null"`
	AudioFileSize   int64     `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (MusicMessageModel) TableName() string {
	return "music_messages"
}

// ToEntity converts DB model to domain entity
func (m *MusicMessageModel) ToEntity() MusicMessage {
	return MusicMessage{
		ChatID:          m.ChatID,
		MessageID:       m.MessageID,
		SentAt:          m.SentAt,
		FileName:        deref(m.FileName),
		MimeType:        deref(m.MimeType),
		Title:           deref(m.Title),
		Performer:       deref(m.Performer),
		DurationSeconds: deref(m.DurationSeconds),
		CoverFileID:     deref(m.CoverFileID),
		CoverWidth:      deref(m.CoverWidth),
		CoverHeight:     deref(m.CoverHeight),
		AudioFileID:     m.AudioFileID,
		AudioFileSize:   m.AudioFileSize,
		CreatedAt:       m.CreatedAt,
	}
}

// NewMusicMessageModel converts an entity, storing zero optional fields as NULL
func NewMusicMessageModel(e MusicMessage) *MusicMessageModel {
	model := &MusicMessageModel{
		ChatID:          e.ChatID,
		MessageID:       e.MessageID,
		SentAt:          e.SentAt,
		FileName:        optional(e.FileName),
		MimeType:        optional(e.MimeType),
		Title:           optional(e.Title),
		Performer:       optional(e.Performer),
		DurationSeconds: optional(e.DurationSeconds),
		AudioFileID:     e.AudioFileID,
		AudioFileSize:   e.AudioFileSize,
	}

	if e.CoverFileID != "" {
		model.CoverFileID = &e.CoverFileID
		model.CoverWidth = &e.CoverWidth
		model.CoverHeight = &e.CoverHeight
	}

	return model
}

func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
