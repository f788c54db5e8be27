package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
	musicerrors "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/errors"
)

// Repository implements deps.MessageRepository on top of gorm
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new music message repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// MaxMessageID returns the highest stored message id of a chat
func (r *Repository) MaxMessageID(ctx context.Context, chatID int64) (int64, bool, error) {
	var maxID sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&entities.MusicMessageModel{}).
		Where("chat_id = ?", chatID).
		Select("MAX(message_id)").
		Row().
		Scan(&maxID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get max message id: %w", err)
	}

	return maxID.Int64, maxID.Valid, nil
}

// Exists checks whether a message is already stored
func (r *Repository) Exists(ctx context.Context, chatID, messageID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.MusicMessageModel{}).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check message existence: %w", err)
	}

	return count > 0, nil
}

// SaveBatch inserts messages in one transaction, skipping ones stored concurrently
func (r *Repository) SaveBatch(ctx context.Context, messages []entities.MusicMessage) ([]entities.MusicMessage, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	var inserted []entities.MusicMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted = inserted[:0]
		for _, message := range messages {
			created, err := insert(tx, message)
			if err != nil {
				return err
			}
			if created {
				inserted = append(inserted, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save message batch: %w", err)
	}

	return inserted, nil
}

// Save inserts a single message
func (r *Repository) Save(ctx context.Context, message entities.MusicMessage) (bool, error) {
	created, err := insert(r.db.WithContext(ctx), message)
	if err != nil {
		return false, fmt.Errorf("failed to save message: %w", err)
	}
	return created, nil
}

// insert relies on the (chat_id, message_id) unique index; a conflict means already stored
func insert(db *gorm.DB, message entities.MusicMessage) (bool, error) {
	result := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).
		Create(entities.NewMusicMessageModel(message))

	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ListByChat returns stored messages of a chat, newest first
func (r *Repository) ListByChat(ctx context.Context, chatID int64) ([]entities.MusicMessage, error) {
	var models []entities.MusicMessageModel
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("message_id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]entities.MusicMessage, len(models))
	for i := range models {
		messages[i] = models[i].ToEntity()
	}

	return messages, nil
}

// Get returns a single stored message
func (r *Repository) Get(ctx context.Context, chatID, messageID int64) (*entities.MusicMessage, error) {
	var model entities.MusicMessageModel
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, musicerrors.ErrTrackNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	message := model.ToEntity()
	return &message, nil
}

var _ deps.MessageRepository = (*Repository)(nil)
