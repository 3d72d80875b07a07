package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/banshee-data/beacon.map/internal/align"
	"github.com/banshee-data/beacon.map/internal/fingerprint"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the alignment tuning parameters. Fields omitted from
// the JSON stay nil and the Get* accessors fall back to built-in defaults.
type TuningConfig struct {
	// Matcher params
	OverlapThreshold *int `json:"overlap_threshold,omitempty"`

	// Pruning params
	MinSharedFingerprints *int  `json:"min_shared_fingerprints,omitempty"`
	DisablePruning        *bool `json:"disable_pruning,omitempty"`
	ExhaustiveFallback    *bool `json:"exhaustive_fallback,omitempty"`

	// Resolver params
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool { return &v }
func ptrInt(v int) *int    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// built-in default. Workers is left nil so it tracks the host CPU count.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		OverlapThreshold:      ptrInt(align.DefaultOverlapThreshold),
		MinSharedFingerprints: ptrInt(fingerprint.DefaultMinShared),
		DisablePruning:        ptrBool(false),
		ExhaustiveFallback:    ptrBool(true),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Partial configs are safe: omitted fields keep their defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
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

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.OverlapThreshold != nil && *c.OverlapThreshold < 1 {
		return fmt.Errorf("overlap_threshold must be at least 1, got %d", *c.OverlapThreshold)
	}
	if c.MinSharedFingerprints != nil && *c.MinSharedFingerprints < 1 {
		return fmt.Errorf("min_shared_fingerprints must be at least 1, got %d (use disable_pruning to turn pruning off)", *c.MinSharedFingerprints)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	return nil
}

// GetOverlapThreshold returns the overlap_threshold value or the default.
func (c *TuningConfig) GetOverlapThreshold() int {
	if c.OverlapThreshold == nil {
		return align.DefaultOverlapThreshold
	}
	return *c.OverlapThreshold
}

// GetMinSharedFingerprints returns the min_shared_fingerprints value or the default.
func (c *TuningConfig) GetMinSharedFingerprints() int {
	if c.MinSharedFingerprints == nil {
		return fingerprint.DefaultMinShared
	}
	return *c.MinSharedFingerprints
}

// GetDisablePruning returns the disable_pruning value or the default.
func (c *TuningConfig) GetDisablePruning() bool {
	if c.DisablePruning == nil {
		return false
	}
	return *c.DisablePruning
}

// GetExhaustiveFallback returns the exhaustive_fallback value or the default.
func (c *TuningConfig) GetExhaustiveFallback() bool {
	if c.ExhaustiveFallback == nil {
		return true
	}
	return *c.ExhaustiveFallback
}

// GetWorkers returns the workers value, or the CPU count when unset.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// ResolverConfig maps the tuning values onto the resolver configuration.
func (c *TuningConfig) ResolverConfig() align.Config {
	return align.Config{
		OverlapThreshold:      c.GetOverlapThreshold(),
		MinSharedFingerprints: c.GetMinSharedFingerprints(),
		DisablePruning:        c.GetDisablePruning(),
		DisableFallback:       !c.GetExhaustiveFallback(),
		Workers:               c.GetWorkers(),
	}
}
