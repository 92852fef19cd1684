package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	LogLevel  string          `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty bool            `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	Capture   CaptureConfig   `json:"capture" yaml:"capture" mapstructure:"capture"`
	Selection SelectionConfig `json:"selection" yaml:"selection" mapstructure:"selection"`
	Overlay   OverlayConfig   `json:"overlay" yaml:"overlay" mapstructure:"overlay"`
	Output    OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`
}

// CaptureConfig selects how the desktop is grabbed
type CaptureConfig struct {
	// Backend is auto, x11, screenshot or portal
	Backend       string        `json:"backend" yaml:"backend" mapstructure:"backend"`
	PortalTimeout time.Duration `json:"portal_timeout" yaml:"portal_timeout" mapstructure:"portal_timeout"`
}

// SelectionConfig controls the selection state machine
type SelectionConfig struct {
	CancelKeys []string `json:"cancel_keys" yaml:"cancel_keys" mapstructure:"cancel_keys"`
	// ZeroArea is cancel or retry
	ZeroArea string `json:"zero_area" yaml:"zero_area" mapstructure:"zero_area"`
}

// OverlayConfig represents overlay appearance
type OverlayConfig struct {
	DimAlpha    int    `json:"dim_alpha" yaml:"dim_alpha" mapstructure:"dim_alpha"`
	BorderColor string `json:"border_color" yaml:"border_color" mapstructure:"border_color"`
	ShowSize    bool   `json:"show_size" yaml:"show_size" mapstructure:"show_size"`
}

// OutputConfig represents where the capture goes
type OutputConfig struct {
	Format           string        `json:"format" yaml:"format" mapstructure:"format"`
	SaveDir          string        `json:"save_dir" yaml:"save_dir" mapstructure:"save_dir"`
	FilenameTemplate string        `json:"filename_template" yaml:"filename_template" mapstructure:"filename_template"`
	Copy             bool          `json:"copy" yaml:"copy" mapstructure:"copy"`
	Stdout           bool          `json:"stdout" yaml:"stdout" mapstructure:"stdout"`
	ClipboardMode    string        `json:"clipboard_mode" yaml:"clipboard_mode" mapstructure:"clipboard_mode"`
	ClipboardTimeout time.Duration `json:"clipboard_timeout" yaml:"clipboard_timeout" mapstructure:"clipboard_timeout"`
}

// Defaults returns the configuration written on first run
func Defaults() *Config {
	return &Config{
		LogLevel: "warn",
		Capture: CaptureConfig{
			Backend:       "auto",
			PortalTimeout: 30 * time.Second,
		},
		Selection: SelectionConfig{
			CancelKeys: []string{"Escape", "q"},
			ZeroArea:   "cancel",
		},
		Overlay: OverlayConfig{
			DimAlpha:    128,
			BorderColor: "#ffffff",
			ShowSize:    true,
		},
		Output: OutputConfig{
			Format:           "png",
			FilenameTemplate: "regionshot_02-01-2006_15:04.png",
			ClipboardMode:    "detach",
			ClipboardTimeout: 10 * time.Minute,
		},
	}
}

var (
	validLevels         = []string{"debug", "info", "warn", "error"}
	validBackends       = []string{"auto", "x11", "screenshot", "portal"}
	validZeroArea       = []string{"cancel", "retry"}
	validClipboardModes = []string{"detach", "wait"}
	validFormats        = []string{"png", "jpeg", "jpg", "bmp", "tiff", "tif"}
)

// Validate checks enumerated and ranged settings
func (c *Config) Validate() error {
	checks := []struct {
		key   string
		value string
		valid []string
	}{
		{"log_level", c.LogLevel, validLevels},
		{"capture.backend", c.Capture.Backend, validBackends},
		{"selection.zero_area", c.Selection.ZeroArea, validZeroArea},
		{"output.clipboard_mode", c.Output.ClipboardMode, validClipboardModes},
		{"output.format", c.Output.Format, validFormats},
	}
	for _, chk := range checks {
		if !oneOf(chk.value, chk.valid) {
			return fmt.Errorf("invalid %s: %q (use: %s)", chk.key, chk.value, strings.Join(chk.valid, ", "))
		}
	}

	if c.Overlay.DimAlpha < 0 || c.Overlay.DimAlpha > 255 {
		return fmt.Errorf("invalid overlay.dim_alpha: %d (use 0-255)", c.Overlay.DimAlpha)
	}
	if _, err := ParseColor(c.Overlay.BorderColor); err != nil {
		return fmt.Errorf("invalid overlay.border_color: %w", err)
	}
	if c.Capture.PortalTimeout < 0 || c.Output.ClipboardTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// ParseColor parses #rrggbb or #rrggbbaa
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q must be #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func oneOf(v string, valid []string) bool {
	for _, ok := range valid {
		if v == ok {
			return true
		}
	}
	return false
}
