package source

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
		wantErr bool
	}{
		{
			name: "two sources",
			sources: []Source{
				{ID: "L2", VideoPath: "L2.mp4", CoordinatesPath: "coordinates.csv"},
				{ID: "R2", VideoPath: "R2.mp4", CoordinatesPath: "coordinates2.csv"},
			},
		},
		{
			name:    "empty catalog",
			sources: nil,
		},
		{
			name:    "missing id",
			sources: []Source{{VideoPath: "L2.mp4", CoordinatesPath: "coordinates.csv"}},
			wantErr: true,
		},
		{
			name:    "missing video",
			sources: []Source{{ID: "L2", CoordinatesPath: "coordinates.csv"}},
			wantErr: true,
		},
		{
			name:    "missing coordinates",
			sources: []Source{{ID: "L2", VideoPath: "L2.mp4"}},
			wantErr: true,
		},
		{
			name: "duplicate id",
			sources: []Source{
				{ID: "L2", VideoPath: "L2.mp4", CoordinatesPath: "coordinates.csv"},
				{ID: "L2", VideoPath: "other.mp4", CoordinatesPath: "other.csv"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.sources...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := NewCatalog(
		Source{ID: "R2", VideoPath: "R2.mp4", CoordinatesPath: "coordinates2.csv"},
		Source{ID: "L2", VideoPath: "L2.mp4", CoordinatesPath: "coordinates.csv"},
	)
	if err != nil {
		t.Fatalf("NewCatalog() unexpected error: %v", err)
	}

	got, err := c.Lookup("R2")
	if err != nil {
		t.Fatalf("Lookup(R2) unexpected error: %v", err)
	}
	if got.VideoPath != "R2.mp4" || got.CoordinatesPath != "coordinates2.csv" {
		t.Errorf("Lookup(R2) = %+v", got)
	}

	if _, err := c.Lookup("C"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Lookup(C) error = %v, want ErrUnknownSource", err)
	}

	if ids := c.IDs(); !reflect.DeepEqual(ids, []string{"L2", "R2"}) {
		t.Errorf("IDs() = %v, want [L2 R2]", ids)
	}
	if all := c.All(); len(all) != 2 || all[0].ID != "L2" {
		t.Errorf("All() = %+v", all)
	}
}
