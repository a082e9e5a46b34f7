package geo

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a point cannot be mapped to a timestamp,
// whether the log was unreadable or held no usable rows.
var ErrNotFound = errors.New("no timestamp found for coordinates")

// Nearest returns the sample closest to p and its index in the log.
// Rows without a position are skipped; ties go to the earliest row.
func Nearest(log CoordinateLog, p Point) (Sample, int, bool) {
	best := -1
	bestDist := 0.0

	for i, s := range log.Samples {
		if !s.HasPosition() {
			continue
		}
		d := p.DistanceTo(*s.Lat, *s.Lon)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best < 0 {
		return Sample{}, -1, false
	}
	return log.Samples[best], best, true
}

// Resolve maps start and end to the timestamps of their nearest rows
func Resolve(log CoordinateLog, start, end Point) (startTS, endTS float64, err error) {
	startTS, err = timestampNear(log, start)
	if err != nil {
		return 0, 0, err
	}
	endTS, err = timestampNear(log, end)
	if err != nil {
		return 0, 0, err
	}
	return startTS, endTS, nil
}

// ResolveFile reads the log at path and resolves both points against it.
// Read failures are reported as ErrNotFound with the cause attached.
func ResolveFile(ctx context.Context, reader LogReader, path string, start, end Point) (float64, float64, error) {
	log, err := reader.Read(ctx, path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return Resolve(*log, start, end)
}

func timestampNear(log CoordinateLog, p Point) (float64, error) {
	s, _, ok := Nearest(log, p)
	if !ok {
		return 0, fmt.Errorf("%w: log has no rows with a position", ErrNotFound)
	}
	if s.TimestampSec == nil || !isFinite(*s.TimestampSec) {
		return 0, fmt.Errorf("%w: nearest row to %s has no timestamp", ErrNotFound, p)
	}
	return *s.TimestampSec, nil
}
