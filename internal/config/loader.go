package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the config from the default path. A missing file is not an
// error; the built-in defaults are returned.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file. A missing file yields the
// defaults. Parse errors and out-of-range values that cannot be clamped are
// returned as errors so the caller can keep its previous config.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate clamps ranges and normalizes dependent settings in place.
func (c *Config) Validate() error {
	if c.InnerGap < 0 {
		c.InnerGap = 0
	}
	if c.OuterGap < 0 {
		c.OuterGap = 0
	}
	// Gaps above a quarter screen of any plausible display are nonsense;
	// clamp against a conservative upper bound rather than rejecting.
	const maxGap = 480
	if c.InnerGap > maxGap {
		c.InnerGap = maxGap
	}
	if c.OuterGap > maxGap {
		c.OuterGap = maxGap
	}

	if c.MinWindowSize < 1 {
		c.MinWindowSize = 1
	}

	if c.Animation.Response <= 0 {
		return fmt.Errorf("animation.response must be positive, got %v", c.Animation.Response)
	}
	if c.Animation.Damping <= 0 {
		return fmt.Errorf("animation.damping must be positive, got %v", c.Animation.Damping)
	}
	if c.Animation.DurationMS < 0 {
		c.Animation.DurationMS = 0
	}

	// mouse_hides_on_focus is meaningless without mouse_follows_focus.
	if c.MouseHidesOnFocus && !c.MouseFollowsFocus {
		c.MouseHidesOnFocus = false
	}

	switch c.Scroll.CenteringMode {
	case CenterAlways, CenterOnOverflow, CenterNever:
	case "":
		c.Scroll.CenteringMode = CenterOnOverflow
	default:
		return fmt.Errorf("unknown scroll.centering_mode: %q", c.Scroll.CenteringMode)
	}

	if c.GroupBars.Thickness < 0 {
		c.GroupBars.Thickness = 0
	}
	return nil
}

// ClampGap bounds a gap against an actual screen extent; the layout
// calculator calls this so gaps never consume more than a quarter of the
// smaller screen dimension.
func ClampGap(gap, screenExtent int) int {
	if gap < 0 {
		return 0
	}
	if max := screenExtent / 4; gap > max {
		return max
	}
	return gap
}
