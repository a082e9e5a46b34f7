package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) (*ConfigManager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	return NewConfigManager(cfg, path), path
}

func TestConfigManager_AddSource(t *testing.T) {
	mgr, path := newTestManager(t)

	if err := mgr.AddSource("C3", "C3.mp4", "coordinates3.csv", ""); err != nil {
		t.Fatalf("AddSource() unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if got := loaded.Sources["C3"]; got.Video != "C3.mp4" || got.Coordinates != "coordinates3.csv" {
		t.Errorf("persisted source = %+v", got)
	}

	if err := mgr.AddSource("C3", "x.mp4", "x.csv", ""); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("AddSource() duplicate error = %v, want ErrDuplicateKey", err)
	}
	if err := mgr.AddSource("C4", "", "x.csv", ""); err == nil {
		t.Error("AddSource() without video expected error")
	}
}

func TestConfigManager_ListSources(t *testing.T) {
	mgr, _ := newTestManager(t)

	sources := mgr.ListSources()
	if len(sources) != 2 {
		t.Fatalf("ListSources() returned %d entries, want 2", len(sources))
	}
	if sources[0].ID != "L2" || sources[1].ID != "R2" {
		t.Errorf("ListSources() order = %s, %s", sources[0].ID, sources[1].ID)
	}
}

func TestConfigManager_UpdateAndRemoveSource(t *testing.T) {
	mgr, _ := newTestManager(t)

	if err := mgr.UpdateSource("L2", "/data/L2.mp4", "", ""); err != nil {
		t.Fatalf("UpdateSource() unexpected error: %v", err)
	}
	got, err := mgr.GetSource("L2")
	if err != nil {
		t.Fatalf("GetSource() unexpected error: %v", err)
	}
	if got.Video != "/data/L2.mp4" || got.Coordinates != "coordinates.csv" {
		t.Errorf("GetSource() = %+v", got)
	}

	if err := mgr.RemoveSource("L2"); err != nil {
		t.Fatalf("RemoveSource() unexpected error: %v", err)
	}
	if _, err := mgr.GetSource("L2"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("GetSource() after remove error = %v, want ErrSourceNotFound", err)
	}
	if err := mgr.RemoveSource("L2"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("RemoveSource() twice error = %v, want ErrSourceNotFound", err)
	}
	if err := mgr.UpdateSource("nope", "a", "b", ""); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("UpdateSource() unknown error = %v, want ErrSourceNotFound", err)
	}
}
