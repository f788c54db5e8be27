package domain

import "context"

// TelegramClient is the request/response API of the remote chat system
type TelegramClient interface {
	// GetChatFolder fetches the member chats of a folder
	GetChatFolder(ctx context.Context, folderID int) (*FolderDetail, error)

	// GetChat fetches a single chat summary
	GetChat(ctx context.Context, chatID int64) (*RemoteChat, error)

	// GetChatHistory fetches up to limit messages older than fromMessageID.
	// fromMessageID 0 starts from the newest message.
	GetChatHistory(ctx context.Context, chatID, fromMessageID int64, limit int) (*MessagePage, error)

	// GetMessage re-fetches a single message
	GetMessage(ctx context.Context, chatID, messageID int64) (*RemoteMessage, error)

	// ListChannels returns broadcast channels of the main dialog list
	ListChannels(ctx context.Context, limit int) ([]RemoteChat, error)

	// IsConnected checks if client is connected and authorized
	IsConnected() bool
}

// FileService exposes the remote file subsystem
type FileService interface {
	// GetFile reports the current download state of a file
	GetFile(ctx context.Context, fileID string) (*RemoteFile, error)

	// DownloadFile starts a background download and returns immediately
	DownloadFile(ctx context.Context, fileID string) error
}

// FolderSnapshot is the process-wide folder list pushed by Telegram
type FolderSnapshot interface {
	Replace(folders []Folder)
	Current() []Folder
}

// MessageQueue buffers pushed messages until the ingest worker drains them
type MessageQueue interface {
	Push(msg RemoteMessage)
	Pop() (RemoteMessage, bool)
	Len() int
}
