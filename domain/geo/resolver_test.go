package geo

import (
	"context"
	"errors"
	"math"
	"testing"
)

func f(v float64) *float64 {
	return &v
}

func row(lat, lon, ts float64) Sample {
	return Sample{Lat: f(lat), Lon: f(lon), TimestampSec: f(ts)}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		log       CoordinateLog
		start     Point
		end       Point
		wantStart float64
		wantEnd   float64
		wantErr   bool
	}{
		{
			name:      "exact matches",
			log:       CoordinateLog{Samples: []Sample{row(10, 10, 5), row(20, 20, 50)}},
			start:     Point{10, 10},
			end:       Point{20, 20},
			wantStart: 5,
			wantEnd:   50,
		},
		{
			name:      "nearest rows",
			log:       CoordinateLog{Samples: []Sample{row(0, 0, 1), row(1, 1, 2), row(2, 2, 3)}},
			start:     Point{0.9, 1.2},
			end:       Point{5, 5},
			wantStart: 2,
			wantEnd:   3,
		},
		{
			name: "rows without position are skipped",
			log: CoordinateLog{Samples: []Sample{
				{Lat: nil, Lon: f(10), TimestampSec: f(99)},
				{Lat: f(10), Lon: nil, TimestampSec: f(98)},
				row(11, 11, 7),
				row(30, 30, 70),
			}},
			start:     Point{10, 10},
			end:       Point{30, 30},
			wantStart: 7,
			wantEnd:   70,
		},
		{
			name:      "ties go to first row",
			log:       CoordinateLog{Samples: []Sample{row(1, 1, 10), row(1, 1, 20), row(-1, -1, 30)}},
			start:     Point{1, 1},
			end:       Point{-1, -1},
			wantStart: 10,
			wantEnd:   30,
		},
		{
			name:      "out of range query still matches",
			log:       CoordinateLog{Samples: []Sample{row(10, 10, 5), row(20, 20, 50)}},
			start:     Point{-500, -500},
			end:       Point{900, 900},
			wantStart: 5,
			wantEnd:   50,
		},
		{
			name:    "empty log",
			log:     CoordinateLog{},
			start:   Point{1, 1},
			end:     Point{2, 2},
			wantErr: true,
		},
		{
			name: "no rows with position",
			log: CoordinateLog{Samples: []Sample{
				{Lat: nil, Lon: nil, TimestampSec: f(1)},
			}},
			start:   Point{1, 1},
			end:     Point{2, 2},
			wantErr: true,
		},
		{
			name: "nearest row has no timestamp",
			log: CoordinateLog{Samples: []Sample{
				{Lat: f(1), Lon: f(1), TimestampSec: nil},
				row(5, 5, 50),
			}},
			start:   Point{1, 1},
			end:     Point{5, 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd, err := Resolve(tt.log, tt.start, tt.end)

			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Resolve() error = %v, want ErrNotFound", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if gotStart != tt.wantStart || gotEnd != tt.wantEnd {
				t.Errorf("Resolve() = (%v, %v), want (%v, %v)", gotStart, gotEnd, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestResolve_SelfMatch(t *testing.T) {
	log := CoordinateLog{Samples: []Sample{
		row(51.5, -0.12, 0.5),
		row(51.6, -0.13, 1.5),
		{Lat: nil, Lon: f(3), TimestampSec: f(2.5)},
		row(51.7, -0.14, 3.5),
		row(51.8, -0.15, 4.5),
	}}

	for i, s := range log.Samples {
		if !s.HasPosition() {
			continue
		}
		p := Point{Lat: *s.Lat, Lon: *s.Lon}
		got, _, err := Resolve(log, p, p)
		if err != nil {
			t.Fatalf("row %d: unexpected error: %v", i, err)
		}
		if got != *s.TimestampSec {
			t.Errorf("row %d: got timestamp %v, want %v", i, got, *s.TimestampSec)
		}
	}
}

func TestNearest_ReturnsIndex(t *testing.T) {
	log := CoordinateLog{Samples: []Sample{
		{Lat: nil, Lon: nil},
		row(3, 4, 1),
		row(0, 0, 2),
	}}

	_, idx, ok := Nearest(log, Point{0.1, 0.1})
	if !ok {
		t.Fatal("expected a match")
	}
	if idx != 2 {
		t.Errorf("Nearest() index = %d, want 2", idx)
	}
}

func TestPoint_DistanceTo(t *testing.T) {
	p := Point{Lat: 0, Lon: 0}
	if got := p.DistanceTo(3, 4); got != 5 {
		t.Errorf("DistanceTo(3, 4) = %v, want 5", got)
	}
}

func TestNewPoint(t *testing.T) {
	if _, err := NewPoint(45, 90); err != nil {
		t.Errorf("NewPoint(45, 90) unexpected error: %v", err)
	}
	if _, err := NewPoint(math.NaN(), 0); err == nil {
		t.Error("NewPoint(NaN, 0) expected error")
	}
	if _, err := NewPoint(0, math.Inf(1)); err == nil {
		t.Error("NewPoint(0, +Inf) expected error")
	}
}

type stubReader struct {
	log *CoordinateLog
	err error
}

func (r *stubReader) Read(ctx context.Context, path string) (*CoordinateLog, error) {
	return r.log, r.err
}

func TestResolveFile(t *testing.T) {
	ok := &stubReader{log: &CoordinateLog{Samples: []Sample{row(10, 10, 5), row(20, 20, 50)}}}
	start, end, err := ResolveFile(context.Background(), ok, "coordinates.csv", Point{10, 10}, Point{20, 20})
	if err != nil {
		t.Fatalf("ResolveFile() unexpected error: %v", err)
	}
	if start != 5 || end != 50 {
		t.Errorf("ResolveFile() = (%v, %v), want (5, 50)", start, end)
	}

	failing := &stubReader{err: errors.New("open coordinates.csv: no such file")}
	_, _, err = ResolveFile(context.Background(), failing, "coordinates.csv", Point{10, 10}, Point{20, 20})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveFile() error = %v, want ErrNotFound", err)
	}
}
