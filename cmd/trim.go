package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	apptrim "geoclip-service/application/trim"
	"geoclip-service/domain/geo"
	"geoclip-service/domain/source"
	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"
	"geoclip-service/infrastructure/coordlog"
	"geoclip-service/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	trimSource   string
	trimStartLat float64
	trimStartLon float64
	trimEndLat   float64
	trimEndLon   float64
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Cut a clip between two positions of a source",
	Long: `Cut a clip out of a source video between the logged timestamps
nearest to two positions.

The clip is written to the configured trimmed directory under a random name.

Example:
  geoclip-service trim --source L2 --start-lat 10 --start-lon 10 --end-lat 20 --end-lon 20`,
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
	trimCmd.Flags().StringVar(&trimSource, "source", "", "Source id (required)")
	trimCmd.Flags().Float64Var(&trimStartLat, "start-lat", 0, "Start latitude (required)")
	trimCmd.Flags().Float64Var(&trimStartLon, "start-lon", 0, "Start longitude (required)")
	trimCmd.Flags().Float64Var(&trimEndLat, "end-lat", 0, "End latitude (required)")
	trimCmd.Flags().Float64Var(&trimEndLon, "end-lon", 0, "End longitude (required)")
	trimCmd.MarkFlagRequired("source")
	trimCmd.MarkFlagRequired("start-lat")
	trimCmd.MarkFlagRequired("start-lon")
	trimCmd.MarkFlagRequired("end-lat")
	trimCmd.MarkFlagRequired("end-lon")
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("invalid sources: %w", err)
	}

	store, err := filesystem.NewClipStore(cfg.Paths.TrimmedDirectory)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	extractor := newClipExtractor(cfg, logger)
	extractor.ResolveAutoCodec(cmd.Context())

	return RunTrimWithDependencies(
		cmd.Context(),
		TrimDependencies{
			Catalog:     catalog,
			LogReader:   coordlog.NewReader(),
			Extractor:   extractor,
			FileChecker: filesystem.NewChecker(),
			Store:       store,
			Logger:      logger,
		},
		apptrim.Input{
			Source:   trimSource,
			StartLat: trimStartLat,
			StartLon: trimStartLon,
			EndLat:   trimEndLat,
			EndLon:   trimEndLon,
		},
		os.Stdout,
	)
}

// TrimDependencies are the ports the trim command is built from
type TrimDependencies struct {
	Catalog     *source.Catalog
	LogReader   geo.LogReader
	Extractor   video.ClipExtractor
	FileChecker video.FileChecker
	Store       storage.ClipStore
	Logger      logrus.FieldLogger
}

// RunTrimWithDependencies runs the trim command with injected dependencies (for testing)
func RunTrimWithDependencies(ctx context.Context, deps TrimDependencies, input apptrim.Input, output OutputWriter) error {
	// Verify ffmpeg is available if extractor supports it
	if verifiable, ok := deps.Extractor.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	service := apptrim.NewService(deps.Catalog, deps.LogReader, deps.Extractor, deps.FileChecker, deps.Store, apptrim.WithLogger(logger))

	fmt.Fprintf(output, "Trimming %s from (%g, %g) to (%g, %g)...\n",
		input.Source, input.StartLat, input.StartLon, input.EndLat, input.EndLon)

	result, err := service.Trim(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Interval: %ss\n", result.Interval)
	fmt.Fprintf(output, "Successfully created: %s\n", deps.Store.Path(result.Filename))
	return nil
}
