package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bryanchriswhite/regionshot/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Manager loads and persists the configuration file
type Manager struct {
	configPath string
	v          *viper.Viper
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/regionshot/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "regionshot", "config.yaml"), nil
}

// NewManager loads configFile, or the default path when empty. A missing
// file is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		actualConfigPath = p
	}

	m := &Manager{
		configPath: actualConfigPath,
		v:          viper.New(),
	}
	m.v.SetConfigFile(actualConfigPath)
	m.v.SetConfigType("yaml")
	setDefaults(m.v, Defaults())

	if _, err := os.Stat(actualConfigPath); os.IsNotExist(err) {
		logger.WithComponent("config").Info().
			Str("path", actualConfigPath).
			Msg("Config file not found, creating new config")
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := m.Get()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", actualConfigPath, err)
	}

	logger.WithComponent("config").Debug().
		Str("path", actualConfigPath).
		Str("backend", cfg.Capture.Backend).
		Msg("Config loaded")

	return m, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("capture.backend", d.Capture.Backend)
	v.SetDefault("capture.portal_timeout", d.Capture.PortalTimeout)
	v.SetDefault("selection.cancel_keys", d.Selection.CancelKeys)
	v.SetDefault("selection.zero_area", d.Selection.ZeroArea)
	v.SetDefault("overlay.dim_alpha", d.Overlay.DimAlpha)
	v.SetDefault("overlay.border_color", d.Overlay.BorderColor)
	v.SetDefault("overlay.show_size", d.Overlay.ShowSize)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.save_dir", d.Output.SaveDir)
	v.SetDefault("output.filename_template", d.Output.FilenameTemplate)
	v.SetDefault("output.copy", d.Output.Copy)
	v.SetDefault("output.stdout", d.Output.Stdout)
	v.SetDefault("output.clipboard_mode", d.Output.ClipboardMode)
	v.SetDefault("output.clipboard_timeout", d.Output.ClipboardTimeout)
}

// Get returns the effective configuration: flags bound to the viper
// instance, then the file, then defaults
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		logger.WithComponent("config").Warn().Err(err).Msg("Failed to decode config, using defaults")
		return Defaults()
	}
	return cfg
}

// GetViper returns the underlying viper instance for flag binding and
// key lookups
func (m *Manager) GetViper() *viper.Viper {
	return m.v
}

// Save writes the effective configuration to the config file
func (m *Manager) Save() error {
	cfg := m.Get()

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config saved")
	return nil
}

// Set parses raw for key's type, validates the result and stores it.
// The change is not persisted until Save.
func (m *Manager) Set(key, raw string) error {
	var value interface{}
	switch key {
	case "log_pretty", "overlay.show_size", "output.copy", "output.stdout":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s (use: true or false)", raw)
		}
		value = b
	case "overlay.dim_alpha":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid number: %s", raw)
		}
		value = n
	case "capture.portal_timeout", "output.clipboard_timeout":
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", raw)
		}
		value = d
	case "selection.cancel_keys":
		value = splitList(raw)
	case "log_level", "capture.backend", "selection.zero_area", "overlay.border_color",
		"output.format", "output.save_dir", "output.filename_template", "output.clipboard_mode":
		value = raw
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	m.mu.Lock()
	prev := m.v.Get(key)
	m.v.Set(key, value)
	m.mu.Unlock()

	if err := m.Get().Validate(); err != nil {
		m.mu.Lock()
		m.v.Set(key, prev)
		m.mu.Unlock()
		return err
	}
	return nil
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	return m.Set("log_level", level)
}

// SetSaveDir sets the directory captures are saved into
func (m *Manager) SetSaveDir(dir string) error {
	return m.Set("output.save_dir", dir)
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetConfigDir returns the configuration directory path
func (m *Manager) GetConfigDir() string {
	return filepath.Dir(m.configPath)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
