package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"geoclip-service/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file with
the HTTP address, clip directory, source videos and their coordinate logs,
ffmpeg settings and Google Drive credentials.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "config/config.yaml"
	}
	return RunSetupWithPrompter(DefaultPrompter, path, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to geoclip-service setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}

	if err := promptSources(prompter, cfg); err != nil {
		return err
	}

	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}

	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Address to listen on?", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	baseURL, err := prompter.Input("Public base URL for clip links (empty to derive from requests)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Server.PublicBaseURL = baseURL

	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	trimmed, err := prompter.Input("Where should trimmed videos go?", cfg.Paths.TrimmedDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if trimmed == "" {
		return fmt.Errorf("trimmed directory is required")
	}
	cfg.Paths.TrimmedDirectory = trimmed
	return nil
}

func promptSources(prompter Prompter, cfg *config.Config) error {
	ids := make([]string, 0, len(cfg.Sources))
	for id := range cfg.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	keep, err := prompter.Confirm(fmt.Sprintf("Use the default sources (%v)?", ids), true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !keep {
		cfg.Sources = make(map[string]config.SourceConfig)
	}

	for {
		add, err := prompter.Confirm("Add a source?", len(cfg.Sources) == 0)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !add {
			break
		}

		id, sc, err := promptSource(prompter)
		if err != nil {
			return err
		}
		if _, exists := cfg.Sources[id]; exists {
			return fmt.Errorf("source %q is already defined", id)
		}
		cfg.Sources[id] = sc
	}

	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	return nil
}

func promptSource(prompter Prompter) (string, config.SourceConfig, error) {
	id, err := prompter.Input("  Source id:", "")
	if err != nil {
		return "", config.SourceConfig{}, fmt.Errorf("prompt cancelled")
	}
	if id == "" {
		return "", config.SourceConfig{}, fmt.Errorf("source id is required")
	}

	videoPath, err := prompter.Input("  Video file:", id+".mp4")
	if err != nil {
		return "", config.SourceConfig{}, fmt.Errorf("prompt cancelled")
	}
	if videoPath == "" {
		return "", config.SourceConfig{}, fmt.Errorf("video file is required")
	}

	coordinates, err := prompter.Input("  Coordinate log (CSV):", "")
	if err != nil {
		return "", config.SourceConfig{}, fmt.Errorf("prompt cancelled")
	}
	if coordinates == "" {
		return "", config.SourceConfig{}, fmt.Errorf("coordinate log is required")
	}

	driveFileID, err := prompter.Input("  Google Drive file id (optional):", "")
	if err != nil {
		return "", config.SourceConfig{}, fmt.Errorf("prompt cancelled")
	}

	return id, config.SourceConfig{
		Video:       videoPath,
		Coordinates: coordinates,
		DriveFileID: driveFileID,
	}, nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	codec, err := prompter.Input("Video codec (libx264, h264_nvenc or auto)?", cfg.FFmpeg.VideoCodec)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if codec != "" {
		cfg.FFmpeg.VideoCodec = codec
	}

	timeout, err := prompter.Input("Extraction timeout?", cfg.FFmpeg.Timeout.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q", timeout)
		}
		cfg.FFmpeg.Timeout = d
	}

	concurrent, err := prompter.Input("Maximum concurrent extractions?", strconv.Itoa(cfg.FFmpeg.MaxConcurrent))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if concurrent != "" {
		n, err := strconv.Atoi(concurrent)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid concurrency %q", concurrent)
		}
		cfg.FFmpeg.MaxConcurrent = n
	}

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google service account credentials (optional)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Google.CredentialsFile = credentials

	if credentials == "" {
		apiKey, err := prompter.Input("Google API key for public files (optional)?", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		cfg.Google.APIKey = apiKey
	}

	return nil
}
