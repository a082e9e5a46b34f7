package cmd

import (
	"errors"
	"fmt"
	"os"

	"geoclip-service/infrastructure/config"
	"geoclip-service/infrastructure/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "geoclip-service",
	Short: "Cut video clips between two points of a recorded route",
	Long: `geoclip-service turns a pair of map positions into a video clip.

Each source video has a coordinate log recorded alongside it. A request
names the source and two (lat, lon) points; the service finds the nearest
logged timestamps, cuts that interval with ffmpeg and serves the result
with HTTP range support.

Example:
  geoclip-service serve
  geoclip-service trim --source L2 --start-lat 10 --start-lon 10 --end-lat 20 --end-lon 20`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Config file is optional for some commands (like help and setup)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or explains why it is missing
func requireConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil && !errors.Is(cfgErr, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
	}
	return nil, fmt.Errorf("config file not found. Run 'geoclip-service setup' first")
}

// newLogger builds the process logger from the loaded configuration
func newLogger(c *config.Config) *logrus.Logger {
	logCfg := config.LoggingConfig{Level: config.DefaultLogLevel, Format: config.DefaultLogFormat}
	if c != nil {
		logCfg = c.Logging
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		logger = logrus.New()
		logger.WithError(err).Warn("Invalid logging configuration, using defaults")
	}
	return logger
}
