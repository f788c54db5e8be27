// Package domaintest provides hand-written fakes of the domain interfaces for tests.
package domaintest

import (
	"context"
	"sync"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
)

// TelegramClient is a configurable fake of domain.TelegramClient.
// Nil funcs report ErrChatNotFound or empty results.
type TelegramClient struct {
	GetChatFolderFunc  func(ctx context.Context, folderID int) (*domain.FolderDetail, error)
	GetChatFunc        func(ctx context.Context, chatID int64) (*domain.RemoteChat, error)
	GetChatHistoryFunc func(ctx context.Context, chatID, fromMessageID int64, limit int) (*domain.MessagePage, error)
	GetMessageFunc     func(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error)
	ListChannelsFunc   func(ctx context.Context, limit int) ([]domain.RemoteChat, error)
	Connected          bool

	mu    sync.Mutex
	calls map[string]int
}

func (c *TelegramClient) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[name]++
}

// Calls returns how many times the named method was invoked
func (c *TelegramClient) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *TelegramClient) GetChatFolder(ctx context.Context, folderID int) (*domain.FolderDetail, error) {
	c.record("GetChatFolder")
	if c.GetChatFolderFunc == nil {
		return nil, domain.ErrFolderNotFound
	}
	return c.GetChatFolderFunc(ctx, folderID)
}

func (c *TelegramClient) GetChat(ctx context.Context, chatID int64) (*domain.RemoteChat, error) {
	c.record("GetChat")
	if c.GetChatFunc == nil {
		return nil, domain.ErrChatNotFound
	}
	return c.GetChatFunc(ctx, chatID)
}

func (c *TelegramClient) GetChatHistory(ctx context.Context, chatID, fromMessageID int64, limit int) (*domain.MessagePage, error) {
	c.record("GetChatHistory")
	if c.GetChatHistoryFunc == nil {
		return &domain.MessagePage{}, nil
	}
	return c.GetChatHistoryFunc(ctx, chatID, fromMessageID, limit)
}

func (c *TelegramClient) GetMessage(ctx context.Context, chatID, messageID int64) (*domain.RemoteMessage, error) {
	c.record("GetMessage")
	if c.GetMessageFunc == nil {
		return nil, domain.ErrMessageNotFound
	}
	return c.GetMessageFunc(ctx, chatID, messageID)
}

func (c *TelegramClient) ListChannels(ctx context.Context, limit int) ([]domain.RemoteChat, error) {
	c.record("ListChannels")
	if c.ListChannelsFunc == nil {
		return nil, nil
	}
	return c.ListChannelsFunc(ctx, limit)
}

func (c *TelegramClient) IsConnected() bool {
	return c.Connected
}

// FileService is a configurable fake of domain.FileService
type FileService struct {
	GetFileFunc      func(ctx context.Context, fileID string) (*domain.RemoteFile, error)
	DownloadFileFunc func(ctx context.Context, fileID string) error

	mu        sync.Mutex
	downloads []string
}

func (f *FileService) GetFile(ctx context.Context, fileID string) (*domain.RemoteFile, error) {
	if f.GetFileFunc == nil {
		return nil, domain.ErrFileNotFound
	}
	return f.GetFileFunc(ctx, fileID)
}

func (f *FileService) DownloadFile(ctx context.Context, fileID string) error {
	f.mu.Lock()
	f.downloads = append(f.downloads, fileID)
	f.mu.Unlock()

	if f.DownloadFileFunc == nil {
		return nil
	}
	return f.DownloadFileFunc(ctx, fileID)
}

// Downloads returns the file ids passed to DownloadFile
func (f *FileService) Downloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.downloads...)
}

// Snapshot is a static domain.FolderSnapshot
type Snapshot struct {
	Folders []domain.Folder
}

func (s *Snapshot) Replace(folders []domain.Folder) { s.Folders = folders }
func (s *Snapshot) Current() []domain.Folder        { return s.Folders }

var (
	_ domain.TelegramClient = (*TelegramClient)(nil)
	_ domain.FileService    = (*FileService)(nil)
	_ domain.FolderSnapshot = (*Snapshot)(nil)
)
