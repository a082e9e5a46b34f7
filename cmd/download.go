package cmd

import (
	"context"
	"fmt"
	"strings"

	"geoclip-service/application/provision"
	"geoclip-service/domain/source"
	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"
	"geoclip-service/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download missing source videos from Google Drive",
	Long: `Download every configured source video that is missing locally and
has a drive_file_id. Requires google.credentials_file or google.api_key.

Example:
  geoclip-service download`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("invalid sources: %w", err)
	}

	downloader, err := newDownloader(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create drive client: %w", err)
	}

	return RunDownloadWithDependencies(cmd.Context(), catalog, filesystem.NewChecker(), downloader, newLogger(cfg), DefaultOutput)
}

// RunDownloadWithDependencies runs the download command with injected dependencies
func RunDownloadWithDependencies(
	ctx context.Context,
	catalog *source.Catalog,
	fileChecker video.FileChecker,
	downloader storage.Downloader,
	logger logrus.FieldLogger,
	out OutputWriter,
) error {
	report, err := provision.NewService(catalog, fileChecker, downloader, logger).EnsureSources(ctx)
	if err != nil {
		return err
	}

	if len(report.Present) > 0 {
		fmt.Fprintf(out, "Already present: %s\n", strings.Join(report.Present, ", "))
	}
	if len(report.Downloaded) > 0 {
		fmt.Fprintf(out, "Downloaded: %s\n", strings.Join(report.Downloaded, ", "))
	}
	if !report.Ready() {
		return fmt.Errorf("missing source videos with no download available: %s", strings.Join(report.Missing, ", "))
	}

	fmt.Fprintln(out, "All source videos are available.")
	return nil
}
