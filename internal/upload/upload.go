// Package upload abstracts the media storage collaborator. The chat
// core only consumes the returned descriptor; any object-storage
// provider can sit behind the interface.
package upload

import (
	"context"
)

// Asset describes a stored file.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
}

// Folders used by the chat app.
const (
	FolderAvatars  = "chat-app/avatars"
	FolderMessages = "chat-app/messages"
)

// Uploader stores and removes media files.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name, folder string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
