package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	if cfg.Listen == nil || *cfg.Listen != DefaultListen {
		t.Errorf("Expected Listen %q, got %v", DefaultListen, cfg.Listen)
	}
	if cfg.AlphaMax == nil || *cfg.AlphaMax != 255 {
		t.Errorf("Expected AlphaMax 255, got %v", cfg.AlphaMax)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyServerConfigGetters(t *testing.T) {
	cfg := EmptyServerConfig()

	if cfg.GetListen() != DefaultListen {
		t.Errorf("GetListen() = %q, want %q", cfg.GetListen(), DefaultListen)
	}
	if cfg.GetDBPath() != DefaultDBPath {
		t.Errorf("GetDBPath() = %q, want %q", cfg.GetDBPath(), DefaultDBPath)
	}
	if cfg.GetAlphaMax() != DefaultAlphaMax {
		t.Errorf("GetAlphaMax() = %d, want %d", cfg.GetAlphaMax(), DefaultAlphaMax)
	}
	if cfg.GetMaxBodyBytes() != DefaultMaxBodyBytes {
		t.Errorf("GetMaxBodyBytes() = %d, want %d", cfg.GetMaxBodyBytes(), DefaultMaxBodyBytes)
	}
	if cfg.GetPartWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("GetPartWorkers() = %d, want GOMAXPROCS", cfg.GetPartWorkers())
	}
	if cfg.GetDebugRoutes() {
		t.Error("GetDebugRoutes() should default to false")
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, "server.json", `{
  "listen": "127.0.0.1:9000",
  "alpha_max": 100,
  "part_workers": 4,
  "debug_routes": true
}`)

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetListen() != "127.0.0.1:9000" {
		t.Errorf("GetListen() = %q", cfg.GetListen())
	}
	if cfg.GetAlphaMax() != 100 {
		t.Errorf("GetAlphaMax() = %d, want 100", cfg.GetAlphaMax())
	}
	if cfg.GetPartWorkers() != 4 {
		t.Errorf("GetPartWorkers() = %d, want 4", cfg.GetPartWorkers())
	}
	if !cfg.GetDebugRoutes() {
		t.Error("GetDebugRoutes() = false, want true")
	}
	// Omitted fields keep their defaults.
	if cfg.GetDBPath() != DefaultDBPath {
		t.Errorf("GetDBPath() = %q, want default", cfg.GetDBPath())
	}
}

func TestLoadServerConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "server.yaml", `{}`, ".json extension"},
		{"bad json", "server.json", `{"listen":`, "failed to parse"},
		{"zero alpha", "server.json", `{"alpha_max": 0}`, "alpha_max must be positive"},
		{"negative workers", "server.json", `{"part_workers": -1}`, "part_workers"},
		{"empty listen", "server.json", `{"listen": ""}`, "listen must not be empty"},
		{"zero body", "server.json", `{"max_body_bytes": 0}`, "max_body_bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadServerConfig(writeConfig(t, tt.file, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	if _, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadServerConfigTooLarge(t *testing.T) {
	big := `{"listen": "` + strings.Repeat("x", 2*1024*1024) + `"}`
	if _, err := LoadServerConfig(writeConfig(t, "big.json", big)); err == nil {
		t.Error("expected error for oversized file")
	}
}

func TestSetters(t *testing.T) {
	cfg := EmptyServerConfig()
	cfg.SetListen(":1")
	cfg.SetDBPath("x.db")
	cfg.SetDebugRoutes(true)

	if cfg.GetListen() != ":1" || cfg.GetDBPath() != "x.db" || !cfg.GetDebugRoutes() {
		t.Errorf("setters not applied: %+v", cfg)
	}
}
