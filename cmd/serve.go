package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geoclip-service/application/housekeeping"
	"geoclip-service/application/provision"
	"geoclip-service/application/trim"
	"geoclip-service/infrastructure/config"
	"geoclip-service/infrastructure/coordlog"
	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveDownload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API that creates and serves clips.

Before accepting requests, missing source videos that have a Google Drive
file id are downloaded (disable with --download=false).

Endpoints:
  POST   /trim                  create a clip between two positions
  GET    /video/:filename       stream a clip (Range supported)
  GET    /trimmed/count         count stored clips
  DELETE /trimmed/delete-all    delete stored clips
  GET    /ping                  health check

Example:
  geoclip-service serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.address)")
	serveCmd.Flags().BoolVar(&serveDownload, "download", true, "Download missing source videos before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}

	logger := newLogger(cfg)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("invalid sources: %w", err)
	}

	store, err := filesystem.NewClipStore(cfg.Paths.TrimmedDirectory)
	if err != nil {
		return err
	}

	extractor := newClipExtractor(cfg, logger)
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = extractor.VerifyInstalled(verifyCtx)
	if err == nil {
		extractor.ResolveAutoCodec(verifyCtx)
	}
	cancel()
	if err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	fileChecker := filesystem.NewChecker()

	if serveDownload {
		downloader, err := newDownloader(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create drive client: %w", err)
		}
		report, err := provision.NewService(catalog, fileChecker, downloader, logger).EnsureSources(ctx)
		if err != nil {
			return err
		}
		if !report.Ready() {
			logger.WithField("sources", report.Missing).Warn("Some source videos are missing; trims on them will fail")
		}
	}

	trimService := trim.NewService(catalog, coordlog.NewReader(), extractor, fileChecker, store, trim.WithLogger(logger))

	router := web.NewRouter(web.Dependencies{
		Trimmer:     trimService,
		Housekeeper: housekeeping.NewService(store, logger),
		ClipStore:   store,
		Logger:      logger,
	}, routerConfig(cfg))

	logger.WithFields(logrus.Fields{
		"sources":     catalog.IDs(),
		"trimmed_dir": store.Dir(),
		"video_codec": extractor.VideoCodec(),
	}).Info("Starting geoclip-service")

	return web.NewServer(cfg.Server.Address, router, cfg.Server.ShutdownTimeout, logger).Run(ctx)
}

func routerConfig(c *config.Config) web.RouterConfig {
	return web.RouterConfig{
		PublicBaseURL: c.Server.PublicBaseURL,
		MaxBodyBytes:  c.Server.MaxBodyBytes,
	}
}
