package geo

import "context"

// Sample is one row of a coordinate log. A nil field means the cell was
// empty or could not be parsed.
type Sample struct {
	Lat          *float64
	Lon          *float64
	TimestampSec *float64
}

// HasPosition returns true if both lat and lon are present
func (s Sample) HasPosition() bool {
	return s.Lat != nil && s.Lon != nil
}

// CoordinateLog is an ordered table correlating video time with position
type CoordinateLog struct {
	Samples []Sample
}

// Len returns the number of rows in file order
func (l CoordinateLog) Len() int {
	return len(l.Samples)
}

// LogReader defines the interface for loading a coordinate log
// This is a port that can be implemented by different infrastructure adapters
type LogReader interface {
	// Read loads the log stored at path
	Read(ctx context.Context, path string) (*CoordinateLog, error)
}
