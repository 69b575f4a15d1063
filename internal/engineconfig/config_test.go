package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.MaxCallDepth != DefaultMaxCallDepth {
		t.Fatalf("MaxCallDepth=%d, want %d", cfg.MaxCallDepth, DefaultMaxCallDepth)
	}
	if !cfg.SloppyMode {
		t.Fatalf("SloppyMode should default to true")
	}
	if !cfg.PrintLastThrow {
		t.Fatalf("PrintLastThrow should default to true")
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "max_call_depth: 128\nsloppy_mode: false\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxCallDepth != 128 {
		t.Fatalf("MaxCallDepth=%d, want 128", cfg.MaxCallDepth)
	}
	if cfg.SloppyMode {
		t.Fatalf("SloppyMode should have been overridden to false")
	}
	// PrintLastThrow wasn't present in the YAML, so the default should
	// survive the overlay.
	if !cfg.PrintLastThrow {
		t.Fatalf("PrintLastThrow should keep its default when absent from YAML")
	}
}

func TestLoadRejectsNonPositiveMaxCallDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("max_call_depth: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxCallDepth != DefaultMaxCallDepth {
		t.Fatalf("a non-positive max_call_depth should fall back to the default, got %d", cfg.MaxCallDepth)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
