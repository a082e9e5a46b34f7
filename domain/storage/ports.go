package storage

import (
	"context"
	"time"
)

// ClipStore defines the interface for the directory holding generated clips
// This is a port that can be implemented by different infrastructure adapters
type ClipStore interface {
	// Path returns where the clip with the given name is (or will be) stored
	Path(name string) string

	// List lists stored clips sorted by name
	List(ctx context.Context) ([]FileInfo, error)

	// DeleteAll deletes every stored file
	DeleteAll(ctx context.Context) (*PurgeResult, error)
}

// Downloader defines the interface for fetching a remote file to local disk
type Downloader interface {
	// Download writes the remote file identified by fileID to destPath
	Download(ctx context.Context, fileID string, destPath string) (int64, error)
}

// FileInfo represents metadata about a stored file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}
