// Package config loads and validates the glide configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CenteringMode controls how the scroll viewport follows focus.
type CenteringMode string

const (
	CenterAlways     CenteringMode = "always"
	CenterOnOverflow CenteringMode = "on_overflow"
	CenterNever      CenteringMode = "never"
)

// Animation holds spring and window-animation parameters.
type Animation struct {
	// Response is the spring response time in seconds.
	Response float64 `yaml:"response"`
	// Damping is the damping ratio; 1.0 is critically damped.
	Damping float64 `yaml:"damping"`
	// DurationMS is the window move/resize animation length. 0 disables
	// window animation entirely.
	DurationMS int `yaml:"duration_ms"`
}

// Scroll holds scroll-layout settings.
type Scroll struct {
	CenteringMode CenteringMode `yaml:"centering_mode"`
}

// GroupBars reserves space for tab/stack indicator bars.
type GroupBars struct {
	Enabled   bool `yaml:"enabled"`
	Thickness int  `yaml:"thickness"`
}

// Config is the root configuration consumed by the daemon.
type Config struct {
	InnerGap      int  `yaml:"inner_gap"`
	OuterGap      int  `yaml:"outer_gap"`
	MinWindowSize int  `yaml:"min_window_size"`
	Animate       bool `yaml:"animate"`

	Animation Animation `yaml:"animation"`

	MouseFollowsFocus bool `yaml:"mouse_follows_focus"`
	FocusFollowsMouse bool `yaml:"focus_follows_mouse"`
	MouseHidesOnFocus bool `yaml:"mouse_hides_on_focus"`

	Scroll    Scroll    `yaml:"scroll"`
	GroupBars GroupBars `yaml:"group_bars"`

	// Keys maps a key sequence (xgbutil keybind syntax) to a command in
	// the same word form accepted by `glide command`.
	Keys map[string]string `yaml:"keys,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InnerGap:      8,
		OuterGap:      8,
		MinWindowSize: 50,
		Animate:       true,
		Animation: Animation{
			Response:   0.5,
			Damping:    1.0,
			DurationMS: 200,
		},
		Scroll: Scroll{
			CenteringMode: CenterOnOverflow,
		},
		GroupBars: GroupBars{
			Enabled:   false,
			Thickness: 20,
		},
		Keys: map[string]string{
			"Mod1-h":       "focus left",
			"Mod1-j":       "focus down",
			"Mod1-k":       "focus up",
			"Mod1-l":       "focus right",
			"Mod1-Shift-h": "move left",
			"Mod1-Shift-j": "move down",
			"Mod1-Shift-k": "move up",
			"Mod1-Shift-l": "move right",
			"Mod1-minus":   "split vertical",
			"Mod1-bar":     "split horizontal",
			"Mod1-t":       "group tabbed",
			"Mod1-s":       "group stacked",
			"Mod1-e":       "ungroup",
			"Mod1-f":       "toggle-fullscreen",
			"Mod1-Shift-f": "toggle-floating",
			"Mod1-0":       "balance",
		},
	}
}

// GroupBarThickness returns the thickness reserved for indicator bars, zero
// when disabled.
func (c *Config) GroupBarThickness() int {
	if !c.GroupBars.Enabled {
		return 0
	}
	return c.GroupBars.Thickness
}

// AnimationEnabled reports whether window frame animation is on.
func (c *Config) AnimationEnabled() bool {
	return c.Animate && c.Animation.DurationMS > 0
}

// Path returns the default config file location.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "glide", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "glide", "config.yaml"), nil
}

// StatePath returns the layout save/restore file location.
func StatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "glide", "layout.yaml"), nil
}

// Marshal renders the config back to yaml, used by `glide config print`.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
