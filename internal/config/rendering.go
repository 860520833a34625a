package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RenderConfig represents tuning parameters for the volume rendering
// manager. Fields are pointers so that a partial JSON file only overrides
// what it names; the Get* methods provide fallback defaults for everything
// else.
type RenderConfig struct {
	// MeshWorkers is the size of the extraction worker pool per batch.
	// Zero or absent selects GOMAXPROCS.
	MeshWorkers *int `json:"mesh_workers,omitempty"`

	// MaxObjects overrides the label pool size. Intended for tests; the
	// production pool is 256.
	MaxObjects *int `json:"max_objects,omitempty"`

	// CacheEnabled controls whether the persistent mesh cache is consulted
	// and written. The in-scene geometry cache is always used.
	CacheEnabled *bool `json:"cache_enabled,omitempty"`

	// CachePath is the sqlite database path for the persistent mesh cache.
	CachePath *string `json:"cache_path,omitempty"`

	// PlotOutputDir, when set, enables the reconciliation pass plotter and
	// names the directory PNG artifacts are written to.
	PlotOutputDir *string `json:"plot_output_dir,omitempty"`

	// BatchTimeout bounds one extraction batch, as a duration string like
	// "30s". Empty or absent disables the bound.
	BatchTimeout *string `json:"batch_timeout,omitempty"`
}

// Load reads a RenderConfig from a JSON file. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func Load(path string) (*RenderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RenderConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RenderConfig) Validate() error {
	if c.MeshWorkers != nil && *c.MeshWorkers < 0 {
		return fmt.Errorf("mesh_workers must be non-negative, got %d", *c.MeshWorkers)
	}
	if c.MaxObjects != nil && *c.MaxObjects < 2 {
		return fmt.Errorf("max_objects must be at least 2, got %d", *c.MaxObjects)
	}
	if c.BatchTimeout != nil && *c.BatchTimeout != "" {
		if _, err := time.ParseDuration(*c.BatchTimeout); err != nil {
			return fmt.Errorf("invalid batch_timeout '%s': %w", *c.BatchTimeout, err)
		}
	}
	return nil
}

// GetMeshWorkers returns the mesh_workers value or the default.
func (c *RenderConfig) GetMeshWorkers() int {
	if c == nil || c.MeshWorkers == nil {
		return 0 // GOMAXPROCS
	}
	return *c.MeshWorkers
}

// GetMaxObjects returns the max_objects value or the default.
func (c *RenderConfig) GetMaxObjects() int {
	if c == nil || c.MaxObjects == nil {
		return 256
	}
	return *c.MaxObjects
}

// GetCacheEnabled returns the cache_enabled value or the default.
func (c *RenderConfig) GetCacheEnabled() bool {
	if c == nil || c.CacheEnabled == nil {
		return false // persistent cache is opt-in
	}
	return *c.CacheEnabled
}

// GetCachePath returns the cache_path value or the default.
func (c *RenderConfig) GetCachePath() string {
	if c == nil || c.CachePath == nil {
		return "meshcache.db"
	}
	return *c.CachePath
}

// GetPlotOutputDir returns the plot_output_dir value; empty means disabled.
func (c *RenderConfig) GetPlotOutputDir() string {
	if c == nil || c.PlotOutputDir == nil {
		return ""
	}
	return *c.PlotOutputDir
}

// GetBatchTimeout parses and returns the batch_timeout as a time.Duration.
// Zero means no bound.
func (c *RenderConfig) GetBatchTimeout() time.Duration {
	if c == nil || c.BatchTimeout == nil || *c.BatchTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.BatchTimeout)
	if err != nil {
		return 0
	}
	return d
}
