package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file,
// the single source of truth for default detection parameters.
const DefaultConfigPath = "config/tuning.defaults.json"

// Fallback values used when a field is absent from the JSON.
const (
	defaultThreshold  = 0.15
	defaultMinArea    = 100
	defaultGSD        = 10.0
	defaultMaxRecords = 500
)

// TuningConfig holds detection tuning parameters. Fields are pointers
// so a partial JSON file overrides only what it names; the Get*
// accessors supply defaults for the rest.
type TuningConfig struct {
	// Segmentation params
	Threshold *float64 `json:"threshold,omitempty"` // change-magnitude cut, (0, 1]
	MinArea   *int     `json:"min_area,omitempty"`  // minimum region size in pixels

	// Geometry params
	GroundSampleDistanceM *float64 `json:"ground_sample_distance_m,omitempty"`

	// Output limits
	MaxRecordsPerRun *int `json:"max_records_per_run,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// GetThreshold returns the change-magnitude threshold.
func (c *TuningConfig) GetThreshold() float64 {
	if c != nil && c.Threshold != nil {
		return *c.Threshold
	}
	return defaultThreshold
}

// GetMinArea returns the minimum region area in pixels.
func (c *TuningConfig) GetMinArea() int {
	if c != nil && c.MinArea != nil {
		return *c.MinArea
	}
	return defaultMinArea
}

// GetGroundSampleDistanceM returns the meters-per-pixel ground size.
func (c *TuningConfig) GetGroundSampleDistanceM() float64 {
	if c != nil && c.GroundSampleDistanceM != nil {
		return *c.GroundSampleDistanceM
	}
	return defaultGSD
}

// GetMaxRecordsPerRun returns the per-comparison record cap.
func (c *TuningConfig) GetMaxRecordsPerRun() int {
	if c != nil && c.MaxRecordsPerRun != nil {
		return *c.MaxRecordsPerRun
	}
	return defaultMaxRecords
}

// Validate rejects out-of-range values. Unset fields are always valid.
func (c *TuningConfig) Validate() error {
	if c.Threshold != nil && (*c.Threshold <= 0 || *c.Threshold > 1) {
		return fmt.Errorf("threshold must be in (0, 1], got %v", *c.Threshold)
	}
	if c.MinArea != nil && *c.MinArea <= 0 {
		return fmt.Errorf("min_area must be positive, got %d", *c.MinArea)
	}
	if c.GroundSampleDistanceM != nil && *c.GroundSampleDistanceM <= 0 {
		return fmt.Errorf("ground_sample_distance_m must be positive, got %v", *c.GroundSampleDistanceM)
	}
	if c.MaxRecordsPerRun != nil && *c.MaxRecordsPerRun <= 0 {
		return fmt.Errorf("max_records_per_run must be positive, got %d", *c.MaxRecordsPerRun)
	}
	return nil
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields
// omitted from the file keep their defaults, so partial configs are
// safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
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

// MustLoadDefaultConfig loads the canonical defaults, searching upward
// from the current directory. Panics when the file cannot be found;
// intended for test setup and binaries that already validated config
// availability.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from repository root")
}
