package coordlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"geoclip-service/domain/geo"
)

// Column names the reader looks up in the header row
const (
	ColumnLat       = "lat"
	ColumnLon       = "lon"
	ColumnTimestamp = "timestamp_sec"
)

// missingValues are cell values treated as empty
var missingValues = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"na":   true,
	"none": true,
}

// Reader implements geo.LogReader for CSV files with a header row
type Reader struct{}

// NewReader creates a new CSV coordinate log reader
func NewReader() *Reader {
	return &Reader{}
}

// Read implements geo.LogReader
func (r *Reader) Read(ctx context.Context, path string) (*geo.CoordinateLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coordinate log: %w", err)
	}
	defer f.Close()

	return Parse(ctx, f)
}

// Parse reads a CSV coordinate log from r. Cells that are empty or not
// numbers become nil; rows may be shorter than the header.
func Parse(ctx context.Context, r io.Reader) (*geo.CoordinateLog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("coordinate log is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	log := &geo.CoordinateLog{}
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		log.Samples = append(log.Samples, geo.Sample{
			Lat:          cell(record, cols.lat),
			Lon:          cell(record, cols.lon),
			TimestampSec: cell(record, cols.timestamp),
		})
	}

	return log, nil
}

type columns struct {
	lat, lon, timestamp int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{lat: -1, lon: -1, timestamp: -1}
	for i, name := range header {
		// Strip a UTF-8 BOM left by spreadsheet exports
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch {
		case name == ColumnLat && cols.lat < 0:
			cols.lat = i
		case name == ColumnLon && cols.lon < 0:
			cols.lon = i
		case name == ColumnTimestamp && cols.timestamp < 0:
			cols.timestamp = i
		}
	}

	var missing []string
	if cols.lat < 0 {
		missing = append(missing, ColumnLat)
	}
	if cols.lon < 0 {
		missing = append(missing, ColumnLon)
	}
	if cols.timestamp < 0 {
		missing = append(missing, ColumnTimestamp)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("coordinate log is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(record []string, idx int) *float64 {
	if idx >= len(record) {
		return nil
	}
	raw := strings.TrimSpace(record[idx])
	if missingValues[strings.ToLower(raw)] {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Ensure Reader implements geo.LogReader
var _ geo.LogReader = (*Reader)(nil)
