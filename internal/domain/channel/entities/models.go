package entities

import "time"

// ChannelModel is a GORM model for channels table
type ChannelModel struct {
	ID         uint      `gorm:"primaryKey"`
	ChatID     int64     `gorm:"not null;uniqueIndex:uq_channels_chat_id"`
	Title      string    `gorm:"not null;default:''"`
	Username   *string   `gorm:"size:255"`
	ChatType   string    `gorm:"not null;size:64"`
	FolderName string    `gorm:"not null;size:255;index:idx_channels_folder_name"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ChannelModel) TableName() string {
	return "channels"
}

// ToEntity converts DB model to domain entity
func (m *ChannelModel) ToEntity() Channel {
	ch := Channel{
		ChatID:     m.ChatID,
		Title:      m.Title,
		ChatType:   m.ChatType,
		FolderName: m.FolderName,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Username != nil {
		ch.Username = *m.Username
	}
	return ch
}

// NewChannelModel converts a domain entity to its DB model
func NewChannelModel(ch Channel) *ChannelModel {
	m := &ChannelModel{
		ChatID:     ch.ChatID,
		Title:      ch.Title,
		ChatType:   ch.ChatType,
		FolderName: ch.FolderName,
	}
	if ch.Username != "" {
		m.Username = &ch.Username
	}
	return m
}
