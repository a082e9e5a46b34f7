package cmd

import (
	"context"

	"geoclip-service/domain/storage"
	"geoclip-service/infrastructure/config"
	"geoclip-service/infrastructure/drive"
	"geoclip-service/infrastructure/ffmpeg"

	"github.com/sirupsen/logrus"
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// newClipExtractor creates the production ffmpeg extractor from config
func newClipExtractor(c *config.Config, logger logrus.FieldLogger) *ffmpeg.ClipExtractor {
	return ffmpeg.NewClipExtractor(
		ffmpeg.WithFFmpegPath(c.FFmpeg.Path),
		ffmpeg.WithTimeout(c.FFmpeg.Timeout),
		ffmpeg.WithCodecs(c.FFmpeg.VideoCodec, c.FFmpeg.Preset, c.FFmpeg.AudioCodec),
		ffmpeg.WithMaxConcurrent(c.FFmpeg.MaxConcurrent),
		ffmpeg.WithLogger(logger),
	)
}

// newDownloader creates the Google Drive downloader, or returns nil when no
// Google credentials are configured
func newDownloader(ctx context.Context, c *config.Config) (storage.Downloader, error) {
	if c.Google.CredentialsFile == "" && c.Google.APIKey == "" {
		return nil, nil
	}

	client, err := drive.NewClient(ctx, drive.Credentials{
		CredentialsFile: c.Google.CredentialsFile,
		APIKey:          c.Google.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
