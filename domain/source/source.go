package source

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSource is returned for a source id that is not configured
var ErrUnknownSource = errors.New("unknown source")

// Source is a video and the coordinate log recorded alongside it
type Source struct {
	ID              string
	VideoPath       string
	CoordinatesPath string
	DriveFileID     string // Optional: remote copy of the video
}

// Catalog maps source ids to sources
type Catalog struct {
	sources map[string]Source
}

// NewCatalog creates a catalog, rejecting duplicate or incomplete entries
func NewCatalog(sources ...Source) (*Catalog, error) {
	c := &Catalog{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		if s.ID == "" {
			return nil, fmt.Errorf("source id is required")
		}
		if s.VideoPath == "" {
			return nil, fmt.Errorf("source %q: video path is required", s.ID)
		}
		if s.CoordinatesPath == "" {
			return nil, fmt.Errorf("source %q: coordinates path is required", s.ID)
		}
		if _, exists := c.sources[s.ID]; exists {
			return nil, fmt.Errorf("source %q is defined more than once", s.ID)
		}
		c.sources[s.ID] = s
	}
	return c, nil
}

// Lookup returns the source with the given id
func (c *Catalog) Lookup(id string) (Source, error) {
	s, ok := c.sources[id]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return s, nil
}

// IDs returns the configured source ids in sorted order
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.sources))
	for id := range c.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every source sorted by id
func (c *Catalog) All() []Source {
	ids := c.IDs()
	result := make([]Source, 0, len(ids))
	for _, id := range ids {
		result = append(result, c.sources[id])
	}
	return result
}
