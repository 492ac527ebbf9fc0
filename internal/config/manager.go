package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/logutil"
	"imagelab-cli/internal/state"
)

// EnvPrefix is prepended to every configuration key read from the environment
const EnvPrefix = "IMAGELAB"

// Manager implements the ConfigManager interface
type Manager struct {
	v     *viper.Viper
	path  string
	flags map[string]interface{} // Store flag values for precedence
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	setDefaults(v)

	return &Manager{
		v:     v,
		flags: make(map[string]interface{}),
	}
}

// SetConfigPath sets the file Load reads when it is given no path. Empty keeps the default location.
func (m *Manager) SetConfigPath(path string) {
	m.path = path
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "https://image.pollinations.ai/prompt/")
	v.SetDefault("default_prompt", "A serene mountain landscape at sunrise")
	v.SetDefault("default_width", 1280)
	v.SetDefault("default_height", 720)
	v.SetDefault("default_model", string(state.ModelFlux))
	v.SetDefault("default_theme", state.ThemeTeal.String())
	v.SetDefault("target", "stdout")
	v.SetDefault("status_template", "")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("interactive_default", true)
	v.SetDefault("log_level", "info")
}

// DefaultPath returns ~/.config/imagelab/config.toml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "imagelab", "config.toml"), nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set keep their value. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from the specified path, falling back to SetConfigPath and then DefaultPath
func (m *Manager) Load(path string) (*interfaces.Config, error) {
	if path == "" {
		path = m.path
	}
	if path == "" {
		// Use default config path
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	path = expandPath(path)

	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Config file doesn't exist, use defaults
		return m.getConfigFromViper(), nil
	}

	m.v.SetConfigFile(path)

	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return m.getConfigFromViper(), nil
}

// SetFlag sets a flag value for precedence resolution
func (m *Manager) SetFlag(key string, value interface{}) {
	m.flags[key] = value
}

// Resolve applies precedence rules (flags > env > config > defaults)
func (m *Manager) Resolve() (*interfaces.Config, error) {
	config := m.getConfigFromViper()

	// Apply flag overrides (highest precedence)
	m.applyFlagOverrides(config)

	return config, nil
}

// applyFlagOverrides applies flag values over the configuration
func (m *Manager) applyFlagOverrides(config *interfaces.Config) {
	stringFlags := map[string]*string{
		"endpoint":        &config.Endpoint,
		"default_prompt":  &config.DefaultPrompt,
		"default_model":   &config.DefaultModel,
		"default_theme":   &config.DefaultTheme,
		"target":          &config.Target,
		"listen_addr":     &config.ListenAddr,
		"log_level":       &config.LogLevel,
		"status_template": &config.StatusTemplate,
	}
	for key, dst := range stringFlags {
		if val, exists := m.flags[key]; exists && val != nil {
			if str, ok := val.(string); ok && str != "" {
				*dst = str
			}
		}
	}

	intFlags := map[string]*int{
		"default_width":  &config.DefaultWidth,
		"default_height": &config.DefaultHeight,
	}
	for key, dst := range intFlags {
		if val, exists := m.flags[key]; exists && val != nil {
			if n, ok := val.(int); ok && n > 0 {
				*dst = n
			}
		}
	}

	if val, exists := m.flags["request_timeout"]; exists && val != nil {
		if d, ok := val.(time.Duration); ok && d >= 0 {
			config.RequestTimeout = d
		}
	}

	if val, exists := m.flags["interactive_default"]; exists && val != nil {
		if b, ok := val.(bool); ok {
			config.InteractiveDefault = b
		}
	}

	config.StatusTemplate = expandPath(config.StatusTemplate)
}

// Validate validates the configuration values
func (m *Manager) Validate(config *interfaces.Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	endpoint, err := url.Parse(config.Endpoint)
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return fmt.Errorf("invalid endpoint: %q (must be an http or https URL)", config.Endpoint)
	}

	if config.DefaultWidth <= 0 || config.DefaultHeight <= 0 {
		return fmt.Errorf("invalid default size: %dx%d (width and height must be positive)",
			config.DefaultWidth, config.DefaultHeight)
	}

	if !state.Model(config.DefaultModel).IsKnown() {
		return fmt.Errorf("invalid default_model: %s (must be one of flux, turbo, anime, realistic)", config.DefaultModel)
	}

	// ParseTheme falls back to Teal, so compare the round trip
	if state.ParseTheme(config.DefaultTheme).String() != config.DefaultTheme {
		return fmt.Errorf("invalid default_theme: %s (must be 'Teal', 'Lilac' or 'Dark')", config.DefaultTheme)
	}

	// Validate target
	validTargets := map[string]bool{
		"clipboard": true,
		"stdout":    true,
	}
	// Also allow file: prefix
	if !validTargets[config.Target] && !strings.HasPrefix(config.Target, "file:") {
		return fmt.Errorf("invalid target: %s (must be 'clipboard', 'stdout', or 'file:/path')", config.Target)
	}

	if config.RequestTimeout < 0 {
		return fmt.Errorf("invalid request_timeout: %s (must not be negative)", config.RequestTimeout)
	}

	if _, err := logutil.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	if config.StatusTemplate != "" {
		if _, err := os.Stat(config.StatusTemplate); err != nil {
			return fmt.Errorf("status_template is not readable: %s", config.StatusTemplate)
		}
	}

	return nil
}

// getConfigFromViper converts viper configuration to Config struct
// This handles env > config > defaults precedence (flags are applied separately)
func (m *Manager) getConfigFromViper() *interfaces.Config {
	return &interfaces.Config{
		Endpoint:           m.v.GetString("endpoint"),
		DefaultPrompt:      m.v.GetString("default_prompt"),
		DefaultWidth:       m.v.GetInt("default_width"),
		DefaultHeight:      m.v.GetInt("default_height"),
		DefaultModel:       m.v.GetString("default_model"),
		DefaultTheme:       m.v.GetString("default_theme"),
		Target:             m.v.GetString("target"),
		StatusTemplate:     expandPath(m.v.GetString("status_template")),
		ListenAddr:         m.v.GetString("listen_addr"),
		RequestTimeout:     m.v.GetDuration("request_timeout"),
		InteractiveDefault: m.v.GetBool("interactive_default"),
		LogLevel:           m.v.GetString("log_level"),
	}
}

// expandPath expands ~ to user home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if we can't get home dir
	}

	return filepath.Join(homeDir, path[2:])
}
