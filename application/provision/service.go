package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"geoclip-service/domain/source"
	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"

	"github.com/sirupsen/logrus"
)

// Report describes the state of every source after EnsureSources
type Report struct {
	Present    []string
	Downloaded []string
	Missing    []string
}

// Ready returns true if every source video is available locally
func (r *Report) Ready() bool {
	return len(r.Missing) == 0
}

// Service makes sure source videos exist locally before serving
type Service struct {
	catalog     *source.Catalog
	fileChecker video.FileChecker
	downloader  storage.Downloader
	logger      logrus.FieldLogger
}

// NewService creates a new provisioning service. downloader may be nil, in
// which case missing videos are only reported.
func NewService(catalog *source.Catalog, fileChecker video.FileChecker, downloader storage.Downloader, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		catalog:     catalog,
		fileChecker: fileChecker,
		downloader:  downloader,
		logger:      logger,
	}
}

// EnsureSources downloads every missing source video that has a remote
// file id. Sources are processed in id order and the first download
// failure stops the run.
func (s *Service) EnsureSources(ctx context.Context) (*Report, error) {
	report := &Report{}

	for _, src := range s.catalog.All() {
		log := s.logger.WithFields(logrus.Fields{"source": src.ID, "path": src.VideoPath})

		if s.fileChecker.Exists(src.VideoPath) {
			report.Present = append(report.Present, src.ID)
			continue
		}

		if src.DriveFileID == "" || s.downloader == nil {
			log.Warn("Source video is missing and cannot be downloaded")
			report.Missing = append(report.Missing, src.ID)
			continue
		}

		if dir := filepath.Dir(src.VideoPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return report, fmt.Errorf("failed to create directory for %s: %w", src.ID, err)
			}
		}

		log.Info("Downloading source video")
		n, err := s.downloader.Download(ctx, src.DriveFileID, src.VideoPath)
		if err != nil {
			return report, fmt.Errorf("failed to download source %s: %w", src.ID, err)
		}
		log.WithField("bytes", n).Info("Source video downloaded")

		report.Downloaded = append(report.Downloaded, src.ID)
	}

	return report, nil
}
