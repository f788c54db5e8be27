package dto

import "github.com/Conte777/NewsFlow/services/music-service/internal/domain/channel/entities"

// FolderResponse is one entry of GET /music/folders
type FolderResponse struct {
	FolderID   int64  `json:"folderId"`
	FolderName string `json:"folderName"`
}

// NewFolderResponse exposes a tracked channel as a browsable folder
func NewFolderResponse(ch entities.Channel) FolderResponse {
	return FolderResponse{
		FolderID:   ch.ChatID,
		FolderName: ch.Title,
	}
}
