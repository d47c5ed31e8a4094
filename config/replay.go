package config

import (
	"fmt"
	"time"
)

// ReplayConfig paces the MQTT snapshot replay.
type ReplayConfig struct {
	IntervalMS int  `json:"interval_ms"`
	Loop       bool `json:"loop"`
}

// SetDefaults applies sane defaults.
func (c *ReplayConfig) SetDefaults() {
	if c.IntervalMS == 0 {
		c.IntervalMS = 1000
	}
}

// Validate rejects negative intervals.
func (c ReplayConfig) Validate() error {
	if c.IntervalMS < 0 {
		return fmt.Errorf("interval_ms must not be negative")
	}
	return nil
}

// Interval returns the pause between frames.
func (c ReplayConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}
