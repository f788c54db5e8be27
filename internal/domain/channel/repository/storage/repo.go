package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/deps"
	"github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/entities"
	musicentities "github.com/Conte777/NewsFlow/services/music-service/internal/domain/music/entities"
)

// Repository implements deps.ChannelRepository with GORM
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new channel repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts a channel or updates the fields that changed
func (r *Repository) Upsert(ctx context.Context, channel entities.Channel) (deps.UpsertOutcome, error) {
	var existing entities.ChannelModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", channel.ChatID).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(entities.NewChannelModel(channel)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return deps.Unchanged, nil
			}
			return deps.Unchanged, fmt.Errorf("failed to create channel %d: %w", channel.ChatID, err)
		}
		return deps.Created, nil
	case err != nil:
		return deps.Unchanged, fmt.Errorf("failed to get channel %d: %w", channel.ChatID, err)
	}

	if existing.ToEntity().SameAs(channel) {
		return deps.Unchanged, nil
	}

	updated := entities.NewChannelModel(channel)
	result := r.db.WithContext(ctx).
		Model(&existing).
		Select("title", "username", "chat_type", "folder_name", "updated_at").
		Updates(updated)
	if result.Error != nil {
		return deps.Unchanged, fmt.Errorf("failed to update channel %d: %w", channel.ChatID, result.Error)
	}

	return deps.Updated, nil
}

// DeleteMissing removes the folder's channels absent from keep and their music messages in one transaction
func (r *Repository) DeleteMissing(ctx context.Context, folderName string, keep []int64) (int, error) {
	if len(keep) == 0 {
		return 0, nil
	}

	var deleted int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []int64
		if err := tx.Model(&entities.ChannelModel{}).
			Where("folder_name = ? AND chat_id NOT IN ?", folderName, keep).
			Pluck("chat_id", &stale).Error; err != nil {
			return fmt.Errorf("failed to find stale channels: %w", err)
		}

		if len(stale) == 0 {
			return nil
		}

		if err := tx.Where("chat_id IN ?", stale).
			Delete(&musicentities.MusicMessageModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete music messages of stale channels: %w", err)
		}

		if err := tx.Where("chat_id IN ?", stale).
			Delete(&entities.ChannelModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete stale channels: %w", err)
		}

		deleted = len(stale)
		return nil
	})

	return deleted, err
}

// ListAll retrieves every tracked channel ordered by title
func (r *Repository) ListAll(ctx context.Context) ([]entities.Channel, error) {
	return r.list(r.db.WithContext(ctx))
}

// ListByFolder retrieves the tracked channels of one folder
func (r *Repository) ListByFolder(ctx context.Context, folderName string) ([]entities.Channel, error) {
	return r.list(r.db.WithContext(ctx).Where("folder_name = ?", folderName))
}

func (r *Repository) list(query *gorm.DB) ([]entities.Channel, error) {
	var models []entities.ChannelModel
	if err := query.Order("title ASC, chat_id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	channels := make([]entities.Channel, len(models))
	for i := range models {
		channels[i] = models[i].ToEntity()
	}

	return channels, nil
}
