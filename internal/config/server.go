package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Defaults used when a field is omitted from the config file.
const (
	DefaultListen       = ":8080"
	DefaultDBPath       = "lightdance.db"
	DefaultAlphaMax     = 255
	DefaultMaxBodyBytes = 1 << 20
)

// ServerConfig is the runtime configuration of the show compiler service.
// Fields are pointers so a partial file keeps the defaults for the rest;
// read values through the Get* methods.
type ServerConfig struct {
	Listen       *string `json:"listen,omitempty"`
	DBPath       *string `json:"db_path,omitempty"`
	AlphaMax     *int    `json:"alpha_max,omitempty"`
	MaxBodyBytes *int64  `json:"max_body_bytes,omitempty"`
	PartWorkers  *int    `json:"part_workers,omitempty"`
	DebugRoutes  *bool   `json:"debug_routes,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }
func ptrBool(v bool) *bool       { return &v }

// EmptyServerConfig returns a ServerConfig with every field unset.
func EmptyServerConfig() *ServerConfig {
	return &ServerConfig{}
}

// DefaultServerConfig returns a ServerConfig with every field set to its
// default.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen:       ptrString(DefaultListen),
		DBPath:       ptrString(DefaultDBPath),
		AlphaMax:     ptrInt(DefaultAlphaMax),
		MaxBodyBytes: ptrInt64(DefaultMaxBodyBytes),
		PartWorkers:  ptrInt(runtime.GOMAXPROCS(0)),
		DebugRoutes:  ptrBool(false),
	}
}

// LoadServerConfig loads a ServerConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyServerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ServerConfig) Validate() error {
	if c.Listen != nil && *c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}
	if c.DBPath != nil && *c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.AlphaMax != nil && *c.AlphaMax <= 0 {
		return fmt.Errorf("alpha_max must be positive, got %d", *c.AlphaMax)
	}
	if c.MaxBodyBytes != nil && *c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", *c.MaxBodyBytes)
	}
	if c.PartWorkers != nil && *c.PartWorkers < 0 {
		return fmt.Errorf("part_workers must be non-negative, got %d", *c.PartWorkers)
	}
	return nil
}

// GetListen returns the listen address or the default.
func (c *ServerConfig) GetListen() string {
	if c.Listen == nil {
		return DefaultListen
	}
	return *c.Listen
}

// GetDBPath returns the database path or the default.
func (c *ServerConfig) GetDBPath() string {
	if c.DBPath == nil {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetAlphaMax returns the alpha that leaves a color unscaled.
func (c *ServerConfig) GetAlphaMax() int {
	if c.AlphaMax == nil {
		return DefaultAlphaMax
	}
	return *c.AlphaMax
}

// GetMaxBodyBytes returns the request body limit.
func (c *ServerConfig) GetMaxBodyBytes() int64 {
	if c.MaxBodyBytes == nil {
		return DefaultMaxBodyBytes
	}
	return *c.MaxBodyBytes
}

// GetPartWorkers returns how many channels a compile folds at once. Zero
// means one per CPU.
func (c *ServerConfig) GetPartWorkers() int {
	if c.PartWorkers == nil || *c.PartWorkers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *c.PartWorkers
}

// GetDebugRoutes reports whether the admin routes are mounted.
func (c *ServerConfig) GetDebugRoutes() bool {
	if c.DebugRoutes == nil {
		return false
	}
	return *c.DebugRoutes
}

// SetListen overrides the listen address, typically from a CLI flag.
func (c *ServerConfig) SetListen(v string) { c.Listen = ptrString(v) }

// SetDBPath overrides the database path, typically from a CLI flag.
func (c *ServerConfig) SetDBPath(v string) { c.DBPath = ptrString(v) }

// SetDebugRoutes overrides the admin route toggle, typically from a CLI flag.
func (c *ServerConfig) SetDebugRoutes(v bool) { c.DebugRoutes = ptrBool(v) }
