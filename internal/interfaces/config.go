package interfaces

import "time"

// Config represents the application configuration
type Config struct {
	Endpoint           string        `toml:"endpoint"`
	DefaultPrompt      string        `toml:"default_prompt"`
	DefaultWidth       int           `toml:"default_width"`
	DefaultHeight      int           `toml:"default_height"`
	DefaultModel       string        `toml:"default_model"`
	DefaultTheme       string        `toml:"default_theme"`
	Target             string        `toml:"target"`
	StatusTemplate     string        `toml:"status_template"`
	ListenAddr         string        `toml:"listen_addr"`
	RequestTimeout     time.Duration `toml:"request_timeout"`
	InteractiveDefault bool          `toml:"interactive_default"`
	LogLevel           string        `toml:"log_level"`
}

// ConfigManager handles configuration loading and resolution
type ConfigManager interface {
	// Load loads configuration from the specified path
	Load(path string) (*Config, error)

	// Resolve applies precedence rules (flags > env > config > defaults)
	Resolve() (*Config, error)

	// Validate validates the configuration values
	Validate(config *Config) error
}
