package housekeeping

import (
	"context"
	"fmt"
	"strings"

	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"

	"github.com/sirupsen/logrus"
)

// Service handles maintenance of the clip output directory
type Service struct {
	store  storage.ClipStore
	logger logrus.FieldLogger
}

// NewService creates a new housekeeping service
func NewService(store storage.ClipStore, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Count returns the number of stored clips
func (s *Service) Count(ctx context.Context) (int, error) {
	files, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list clips: %w", err)
	}

	count := 0
	for _, f := range files {
		if strings.HasSuffix(f.Name, video.ClipExtension) {
			count++
		}
	}
	return count, nil
}

// PurgeAll deletes every file in the output directory and returns the
// deleted names in sorted order. Files deleted before a failure stay deleted.
func (s *Service) PurgeAll(ctx context.Context) (*storage.PurgeResult, error) {
	result, err := s.store.DeleteAll(ctx)
	if result == nil {
		result = &storage.PurgeResult{}
	}
	if err != nil {
		s.logger.WithError(err).WithField("deleted", len(result.DeletedFiles)).Error("Purge stopped early")
		return result, fmt.Errorf("failed to delete clips: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"deleted":     len(result.DeletedFiles),
		"freed_bytes": result.FreedBytes,
	}).Info("Purged clips")

	return result, nil
}
