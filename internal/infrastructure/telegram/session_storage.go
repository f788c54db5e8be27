package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStorage implements session.Storage on top of the service database
type SessionStorage struct {
	db   *gorm.DB
	name string
}

// NewSessionStorage creates a session storage keyed by name
func NewSessionStorage(db *gorm.DB, name string) (*SessionStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if name == "" {
		name = "default"
	}

	return &SessionStorage{db: db, name: name}, nil
}

// LoadSession loads session data, returning session.ErrNotFound for a fresh install
func (s *SessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	var sess SessionModel
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if len(sess.Data) == 0 {
		return nil, session.ErrNotFound
	}

	return sess.Data, nil
}

// StoreSession upserts session data
func (s *SessionStorage) StoreSession(ctx context.Context, data []byte) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&SessionModel{Name: s.name, Data: data}).Error
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// DeleteSession removes the stored session, forcing a new login on next start
func (s *SessionStorage) DeleteSession(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("name = ?", s.name).Delete(&SessionModel{}).Error
}

var _ session.Storage = (*SessionStorage)(nil)
