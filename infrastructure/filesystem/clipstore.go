package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"geoclip-service/domain/storage"
)

// ClipStore implements storage.ClipStore over a single flat directory
type ClipStore struct {
	dir string
}

// NewClipStore creates the directory if needed and returns a store over it
func NewClipStore(dir string) (*ClipStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create clip directory: %w", err)
	}
	return &ClipStore{dir: dir}, nil
}

// Dir returns the directory holding the clips
func (s *ClipStore) Dir() string {
	return s.dir
}

// Path implements storage.ClipStore
func (s *ClipStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// List implements storage.ClipStore. Only regular files are listed.
func (s *ClipStore) List(ctx context.Context) ([]storage.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip directory: %w", err)
	}

	var result []storage.FileInfo
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		result = append(result, storage.FileInfo{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DeleteAll implements storage.ClipStore
func (s *ClipStore) DeleteAll(ctx context.Context) (*storage.PurgeResult, error) {
	result := &storage.PurgeResult{}

	files, err := s.List(ctx)
	if err != nil {
		return result, err
	}

	for _, f := range files {
		if err := os.Remove(s.Path(f.Name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return result, fmt.Errorf("failed to delete %s: %w", f.Name, err)
		}
		result.DeletedFiles = append(result.DeletedFiles, storage.DeletedFile{
			Name: f.Name,
			Size: f.Size,
		})
		result.FreedBytes += f.Size
	}

	return result, nil
}

// Ensure ClipStore implements storage.ClipStore
var _ storage.ClipStore = (*ClipStore)(nil)
