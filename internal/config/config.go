// Package config loads service and calibration configuration from JSON.
// Fields are pointers so partial configs are safe: omitted fields fall
// back to defaults through the Get* accessors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied when the corresponding field is absent from the JSON.
const (
	DefaultFrameRate = 30.0 // playback driver ticks per second
)

// CameraCalibration holds optional per-camera velocity multipliers applied
// to projected motion. Multipliers affect velocity only, never acceleration.
type CameraCalibration struct {
	VelocityMultiplierX *float64 `json:"velocity_multiplier_x,omitempty"`
	VelocityMultiplierY *float64 `json:"velocity_multiplier_y,omitempty"`
}

// GetVelocityMultiplierX returns the X velocity multiplier, defaulting to 1.
func (c *CameraCalibration) GetVelocityMultiplierX() float64 {
	if c == nil || c.VelocityMultiplierX == nil {
		return 1.0
	}
	return *c.VelocityMultiplierX
}

// GetVelocityMultiplierY returns the Y velocity multiplier, defaulting to 1.
func (c *CameraCalibration) GetVelocityMultiplierY() float64 {
	if c == nil || c.VelocityMultiplierY == nil {
		return 1.0
	}
	return *c.VelocityMultiplierY
}

// Config is the root service configuration. The schema matches the
// /api/config endpoint so the same JSON serves startup and runtime reads.
type Config struct {
	// ConsensusURL is the base URL of the cross-camera consensus endpoint.
	// Empty disables consensus lookups (projection windows are never extended).
	ConsensusURL *string `json:"consensus_url,omitempty"`

	// FrameRate is the playback driver tick rate in frames per second.
	FrameRate *float64 `json:"frame_rate,omitempty"`

	// Calibration maps camera id to its velocity calibration.
	Calibration map[string]*CameraCalibration `json:"calibration,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// GetConsensusURL returns the consensus endpoint base URL, or "" if unset.
func (c *Config) GetConsensusURL() string {
	if c == nil || c.ConsensusURL == nil {
		return ""
	}
	return *c.ConsensusURL
}

// GetFrameRate returns the driver tick rate in fps.
func (c *Config) GetFrameRate() float64 {
	if c == nil || c.FrameRate == nil {
		return DefaultFrameRate
	}
	return *c.FrameRate
}

// CalibrationFor returns the calibration for a camera id, or nil when none
// is configured. A nil receiver is safe and yields identity multipliers.
func (c *Config) CalibrationFor(cameraID string) *CameraCalibration {
	if c == nil || c.Calibration == nil {
		return nil
	}
	return c.Calibration[cameraID]
}

// Load reads a Config from a JSON file. The path must have a .json
// extension and the file must be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if c.FrameRate != nil && (*c.FrameRate <= 0 || *c.FrameRate > 240) {
		return fmt.Errorf("frame_rate must be in (0, 240], got %f", *c.FrameRate)
	}
	for cameraID, cal := range c.Calibration {
		if cal == nil {
			continue
		}
		if cal.VelocityMultiplierX != nil && *cal.VelocityMultiplierX <= 0 {
			return fmt.Errorf("camera %s: velocity_multiplier_x must be positive, got %f", cameraID, *cal.VelocityMultiplierX)
		}
		if cal.VelocityMultiplierY != nil && *cal.VelocityMultiplierY <= 0 {
			return fmt.Errorf("camera %s: velocity_multiplier_y must be positive, got %f", cameraID, *cal.VelocityMultiplierY)
		}
	}
	return nil
}
