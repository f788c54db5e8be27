package http

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

// DatabaseCheck pings the underlying SQL connection pool
func DatabaseCheck(db *gorm.DB) Check {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// TelegramCheck reports whether the MTProto client is connected
func TelegramCheck(client domain.TelegramClient) Check {
	return func(ctx context.Context) error {
		if !client.IsConnected() {
			return errors.New("telegram client is not connected")
		}
		return nil
	}
}

// FolderSnapshotCheck reports whether a folder list has been received
func FolderSnapshotCheck(snapshot domain.FolderSnapshot) Check {
	return func(ctx context.Context) error {
		if len(snapshot.Current()) == 0 {
			return errors.New("chat folders not received yet")
		}
		return nil
	}
}

type healthReporter interface {
	IsHealthy() bool
}

// ProducerCheck reports the producer state when it exposes one
func ProducerCheck(producer any) Check {
	return func(ctx context.Context) error {
		if r, ok := producer.(healthReporter); ok && !r.IsHealthy() {
			return errors.New("kafka producer is not healthy")
		}
		return nil
	}
}
