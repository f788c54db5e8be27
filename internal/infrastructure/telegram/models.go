package telegram

import "time"

// SessionModel represents database model for an MTProto session
type SessionModel struct {
	Name      string    `gorm:"primaryKey;column:name"`
	Data      []byte    `gorm:"column:data;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for SessionModel
func (SessionModel) TableName() string {
	return "telegram_sessions"
}

// UpdatesStateModel represents the common updates state of the logged in user
type UpdatesStateModel struct {
	UserID int64 `gorm:"primaryKey;column:user_id"`
	Pts    int   `gorm:"column:pts;default:0"`
	Qts    int   `gorm:"column:qts;default:0"`
	Date   int   `gorm:"column:date;default:0"`
	Seq    int   `gorm:"column:seq;default:0"`
}

// TableName returns the table name for UpdatesStateModel
func (UpdatesStateModel) TableName() string {
	return "telegram_updates_state"
}

// ChannelStateModel represents the pts and access hash of a single channel
type ChannelStateModel struct {
	UserID     int64 `gorm:"primaryKey;column:user_id"`
	ChannelID  int64 `gorm:"primaryKey;column:channel_id"`
	Pts        int   `gorm:"column:pts;default:0"`
	AccessHash int64 `gorm:"column:access_hash;default:0"`
}

// TableName returns the table name for ChannelStateModel
func (ChannelStateModel) TableName() string {
	return "telegram_channel_state"
}
