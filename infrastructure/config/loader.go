package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"geoclip-service/domain/source"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default values applied to fields left empty in the config file
const (
	DefaultAddress          = ":8000"
	DefaultMaxBodyBytes     = 4096
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultTrimmedDirectory = "trimmed_videos"
	DefaultFFmpegPath       = "ffmpeg"
	DefaultFFmpegTimeout    = 30 * time.Second
	DefaultVideoCodec       = "libx264"
	DefaultPreset           = "fast"
	DefaultAudioCodec       = "aac"
	DefaultMaxConcurrent    = 4
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
)

// Environment variables that override config file values
const (
	EnvAddress       = "GEOCLIP_ADDR"
	EnvPublicBaseURL = "GEOCLIP_PUBLIC_BASE_URL"
	EnvTrimmedDir    = "GEOCLIP_TRIMMED_DIR"
	EnvLogLevel      = "GEOCLIP_LOG_LEVEL"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig            `yaml:"server"`
	Paths   PathsConfig             `yaml:"paths"`
	Sources map[string]SourceConfig `yaml:"sources" validate:"required,min=1,dive,keys,required,endkeys"`
	FFmpeg  FFmpegConfig            `yaml:"ffmpeg"`
	Google  GoogleConfig            `yaml:"google"`
	Logging LoggingConfig           `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	PublicBaseURL   string        `yaml:"public_base_url" validate:"omitempty,url"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// PathsConfig contains directory paths for clip storage
type PathsConfig struct {
	TrimmedDirectory string `yaml:"trimmed_directory" validate:"required"`
}

// SourceConfig maps a source id to its video and coordinate log
type SourceConfig struct {
	Video       string `yaml:"video" validate:"required"`
	Coordinates string `yaml:"coordinates" validate:"required"`
	DriveFileID string `yaml:"drive_file_id,omitempty"`
}

// FFmpegConfig contains clip extraction settings
type FFmpegConfig struct {
	Path          string        `yaml:"path" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	VideoCodec    string        `yaml:"video_codec" validate:"required"`
	Preset        string        `yaml:"preset"`
	AudioCodec    string        `yaml:"audio_codec" validate:"required"`
	MaxConcurrent int           `yaml:"max_concurrent" validate:"min=1"`
}

// GoogleConfig contains Google API settings used to download source videos
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	APIKey          string `yaml:"api_key,omitempty"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

var validate = validator.New()

// Default returns the configuration of the reference deployment
func Default() *Config {
	cfg := &Config{
		Sources: map[string]SourceConfig{
			"L2": {Video: "L2.mp4", Coordinates: "coordinates.csv", DriveFileID: "1B-SySPfrSL2lietk3dKoZetIyfxJ-wfv"},
			"R2": {Video: "R2.mp4", Coordinates: "coordinates2.csv", DriveFileID: "1cjWAkltEMEDP4x1hFm7gP0tVCw8l_Bi2"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the configuration from the specified YAML file.
// Defaults and environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyDefaults fills empty fields with default values
func (c *Config) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Paths.TrimmedDirectory == "" {
		c.Paths.TrimmedDirectory = DefaultTrimmedDirectory
	}
	if c.FFmpeg.Path == "" {
		c.FFmpeg.Path = DefaultFFmpegPath
	}
	if c.FFmpeg.Timeout == 0 {
		c.FFmpeg.Timeout = DefaultFFmpegTimeout
	}
	if c.FFmpeg.VideoCodec == "" {
		c.FFmpeg.VideoCodec = DefaultVideoCodec
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = DefaultPreset
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = DefaultAudioCodec
	}
	if c.FFmpeg.MaxConcurrent == 0 {
		c.FFmpeg.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// ApplyEnv overrides values from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddress); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := lookup(EnvPublicBaseURL); ok && v != "" {
		c.Server.PublicBaseURL = v
	}
	if v, ok := lookup(EnvTrimmedDir); ok && v != "" {
		c.Paths.TrimmedDirectory = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration for missing or malformed values
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(FormatValidationErrors(verrs), ", "))
}

// FormatValidationErrors formats validation errors from validator/v10
func FormatValidationErrors(verrs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (param: %s)", msg, fe.Param())
		}
		messages = append(messages, msg)
	}
	return messages
}

// Catalog builds the source catalog from the configured sources
func (c *Config) Catalog() (*source.Catalog, error) {
	sources := make([]source.Source, 0, len(c.Sources))
	for id, sc := range c.Sources {
		sources = append(sources, source.Source{
			ID:              id,
			VideoPath:       sc.Video,
			CoordinatesPath: sc.Coordinates,
			DriveFileID:     sc.DriveFileID,
		})
	}
	return source.NewCatalog(sources...)
}
