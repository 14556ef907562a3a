package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// SpeedConfig maps speed tag names to playback-rate multipliers.
type SpeedConfig struct {
	Speeds map[string]float64 `json:"speeds"`
}

// DefaultSpeedConfig returns the built-in speed vocabulary.
func DefaultSpeedConfig() *SpeedConfig {
	return &SpeedConfig{
		Speeds: map[string]float64{
			"slow":   0.9,
			"normal": 1.0,
			"fast":   1.1,
		},
	}
}

// Names lists all speed tag names.
func (c *SpeedConfig) Names() []string {
	names := make([]string, 0, len(c.Speeds))
	for name := range c.Speeds {
		names = append(names, name)
	}
	return names
}

// Value returns the multiplier for a speed tag. Unknown tags log a warning
// and fall back to 1.0 rather than failing the line.
func (c *SpeedConfig) Value(name string) float64 {
	v, ok := c.Speeds[name]
	if !ok {
		slog.Warn("unknown speed tag, using 1.0", "speed", name, "available", c.Names())
		return 1.0
	}
	return v
}

// LoadSpeedConfig reads a speed configuration file, falling back to the
// defaults when path is empty.
func LoadSpeedConfig(path string) (*SpeedConfig, error) {
	if path == "" {
		return DefaultSpeedConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read speed config: %w", err)
	}

	var cfg SpeedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse speed config %s: %w", path, err)
	}
	if len(cfg.Speeds) == 0 {
		return DefaultSpeedConfig(), nil
	}
	return &cfg, nil
}
