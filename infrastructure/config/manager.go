package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors for config management
var (
	ErrSourceNotFound = errors.New("source not found")
	ErrDuplicateKey   = errors.New("key already exists")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// SourceEntry represents a configured source
type SourceEntry struct {
	ID          string
	Video       string
	Coordinates string
	DriveFileID string
}

// AddSource adds a new source to config
func (m *ConfigManager) AddSource(id, video, coordinates, driveFileID string) error {
	id = strings.TrimSpace(id)
	video = strings.TrimSpace(video)
	coordinates = strings.TrimSpace(coordinates)

	if id == "" {
		return fmt.Errorf("source id is required")
	}
	if video == "" {
		return fmt.Errorf("source video path is required")
	}
	if coordinates == "" {
		return fmt.Errorf("source coordinates path is required")
	}

	if m.config.Sources == nil {
		m.config.Sources = make(map[string]SourceConfig)
	}

	if _, exists := m.config.Sources[id]; exists {
		return fmt.Errorf("%w: source %q", ErrDuplicateKey, id)
	}

	m.config.Sources[id] = SourceConfig{
		Video:       video,
		Coordinates: coordinates,
		DriveFileID: strings.TrimSpace(driveFileID),
	}
	return Save(m.config, m.configPath)
}

// ListSources returns all sources sorted by id
func (m *ConfigManager) ListSources() []SourceEntry {
	result := make([]SourceEntry, 0, len(m.config.Sources))
	for id, sc := range m.config.Sources {
		result = append(result, SourceEntry{
			ID:          id,
			Video:       sc.Video,
			Coordinates: sc.Coordinates,
			DriveFileID: sc.DriveFileID,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// GetSource gets a source by id
func (m *ConfigManager) GetSource(id string) (SourceEntry, error) {
	id = strings.TrimSpace(id)
	if sc, exists := m.config.Sources[id]; exists {
		return SourceEntry{ID: id, Video: sc.Video, Coordinates: sc.Coordinates, DriveFileID: sc.DriveFileID}, nil
	}
	return SourceEntry{}, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
}

// RemoveSource removes a source by id
func (m *ConfigManager) RemoveSource(id string) error {
	id = strings.TrimSpace(id)
	if _, exists := m.config.Sources[id]; !exists {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}

	delete(m.config.Sources, id)
	return Save(m.config, m.configPath)
}

// UpdateSource updates a source's paths and/or drive file id
func (m *ConfigManager) UpdateSource(id, video, coordinates, driveFileID string) error {
	id = strings.TrimSpace(id)

	sc, exists := m.config.Sources[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}

	// Update only provided values
	if video = strings.TrimSpace(video); video != "" {
		sc.Video = video
	}
	if coordinates = strings.TrimSpace(coordinates); coordinates != "" {
		sc.Coordinates = coordinates
	}
	if driveFileID = strings.TrimSpace(driveFileID); driveFileID != "" {
		sc.DriveFileID = driveFileID
	}

	m.config.Sources[id] = sc
	return Save(m.config, m.configPath)
}
