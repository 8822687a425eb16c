package cpconv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RunConfig holds the pipeline parameters that can be kept in a JSON file. Fields omitted from the
// file are nil and the Get* methods return their defaults.
type RunConfig struct {
	Mode         *string  `json:"mode,omitempty"` // "pixels" or "meters"
	MaxShift     *int     `json:"max_shift,omitempty"`
	ShiftMeters  *float64 `json:"shift_meters,omitempty"`
	ShiftPercent *int     `json:"shift_percent,omitempty"`
	RandomAmount *bool    `json:"random_amount,omitempty"`
	AverageGSD   *float64 `json:"average_gsd,omitempty"`
	SizeRule     *string  `json:"size_rule,omitempty"` // "max" or "width"
	Seed         *int64   `json:"seed,omitempty"`
}

// The jitter modes.
const (
	ModePixels = "pixels"
	ModeMeters = "meters"
)

// LoadRunConfig loads a RunConfig from a JSON file.
func LoadRunConfig(path string) (*RunConfig, error) {
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
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(),
			maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.Mode != nil && *c.Mode != ModePixels && *c.Mode != ModeMeters {
		return fmt.Errorf("mode must be %q or %q, got %q", ModePixels, ModeMeters, *c.Mode)
	}
	if c.MaxShift != nil && *c.MaxShift < 0 {
		return fmt.Errorf("max_shift must be non-negative, got %d", *c.MaxShift)
	}
	if c.ShiftMeters != nil && *c.ShiftMeters < 0 {
		return fmt.Errorf("shift_meters must be non-negative, got %f", *c.ShiftMeters)
	}
	if c.ShiftPercent != nil && (*c.ShiftPercent < 0 || *c.ShiftPercent > 100) {
		return fmt.Errorf("shift_percent must be between 0 and 100, got %d", *c.ShiftPercent)
	}
	if c.AverageGSD != nil && !validGSD(*c.AverageGSD) {
		return fmt.Errorf("average_gsd must be positive, got %f", *c.AverageGSD)
	}
	if c.SizeRule != nil {
		if _, err := ParseSizeRule(*c.SizeRule); err != nil {
			return err
		}
	}
	return nil
}

// GetMode returns the jitter mode or the default.
func (c *RunConfig) GetMode() string {
	if c.Mode == nil {
		return ModePixels
	}
	return *c.Mode
}

// GetMaxShift returns the pixel jitter magnitude or the default.
func (c *RunConfig) GetMaxShift() int {
	if c.MaxShift == nil {
		return 5
	}
	return *c.MaxShift
}

// GetShiftMeters returns the meter jitter magnitude or the default.
func (c *RunConfig) GetShiftMeters() float64 {
	if c.ShiftMeters == nil {
		return 5
	}
	return *c.ShiftMeters
}

// GetShiftPercent returns the percentage of images to jitter or the default.
func (c *RunConfig) GetShiftPercent() int {
	if c.ShiftPercent == nil {
		return 100
	}
	return *c.ShiftPercent
}

// GetRandomAmount returns whether the per-image meter shift is randomized.
func (c *RunConfig) GetRandomAmount() bool {
	if c.RandomAmount == nil {
		return true
	}
	return *c.RandomAmount
}

// GetSizeRule returns the size rule, defaulting to the larger box side.
func (c *RunConfig) GetSizeRule() SizeRule {
	if c.SizeRule == nil {
		return SizeRuleMaxSide
	}
	r, _ := ParseSizeRule(*c.SizeRule) // Checked by Validate.
	return r
}
