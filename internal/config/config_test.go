package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{
		"allowed_paths": ["/data/exports"],
		"allow_unsafe_paths": true,
		"db_max_open_conns": 1,
		"disabled_tools": ["capsule_import"]
	}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.AllowedPaths, []string{"/data/exports"}) {
		t.Errorf("AllowedPaths = %v", cfg.AllowedPaths)
	}
	if !cfg.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true")
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d", cfg.DBMaxOpenConns)
	}
	if !reflect.DeepEqual(cfg.DisabledTools, []string{"capsule_import"}) {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		AllowedPaths:   []string{"/a", "/b"},
		DBMaxOpenConns: 4,
	}
	overlay := &Config{
		AllowedPaths:     []string{"/b", " /c "},
		AllowUnsafePaths: true,
		DBMaxIdleConns:   2,
	}

	merged := Merge(base, overlay)

	if !reflect.DeepEqual(merged.AllowedPaths, []string{"/a", "/b", "/c"}) {
		t.Errorf("AllowedPaths = %v", merged.AllowedPaths)
	}
	if merged.DBMaxOpenConns != 4 {
		t.Errorf("DBMaxOpenConns = %d, want base value kept", merged.DBMaxOpenConns)
	}
	if merged.DBMaxIdleConns != 2 {
		t.Errorf("DBMaxIdleConns = %d", merged.DBMaxIdleConns)
	}
	if !merged.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true after merge")
	}
}
