package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Master  MasterConfig  `yaml:"master"`
	Refresh RefreshConfig `yaml:"refresh"`
	Tray    TrayConfig    `yaml:"tray"`
	Updates UpdatesConfig `yaml:"updates"`
	Logging LoggingConfig `yaml:"logging"`
}

// MasterConfig holds master-server query configuration
type MasterConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Protocol       int    `yaml:"protocol"`
	MaxServers     int    `yaml:"max_servers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per UDP exchange
}

// Timeout returns the per-exchange socket timeout.
func (c *MasterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RefreshConfig holds the refresh loop configuration
type RefreshConfig struct {
	IntervalSeconds  int  `yaml:"interval_seconds"`
	FailureThreshold *int `yaml:"failure_threshold"` // an explicit 0 disables the unknown badge
}

// Interval returns the refresh interval.
func (c *RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Threshold returns the consecutive-failure count that flips the badge to
// unknown, 0 when disabled.
func (c *RefreshConfig) Threshold() int {
	if c.FailureThreshold == nil {
		return 3
	}
	return *c.FailureThreshold
}

// TrayConfig holds presentation configuration
type TrayConfig struct {
	HighPlayerCount int `yaml:"high_player_count"` // green badge at or above this
	MaxMenuServers  int `yaml:"max_menu_servers"`
}

// UpdatesConfig holds release update check configuration
type UpdatesConfig struct {
	CheckOnStartup *bool `yaml:"check_on_startup"` // default true
}

// CheckUpdatesOnStartup reports whether the startup update check is enabled.
func (c *UpdatesConfig) CheckUpdatesOnStartup() bool {
	return c.CheckOnStartup == nil || *c.CheckOnStartup
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // text, json (default: text)
}

// Default returns the built-in configuration. The application is fully
// functional with no config file at all.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFromFile loads configuration from a YAML file. A missing file is not an
// error and yields the defaults; set required for an explicitly requested
// path that must exist.
func LoadFromFile(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Master.Host == "" {
		c.Master.Host = "master.unvanquished.net"
	}
	if c.Master.Port == 0 {
		c.Master.Port = 27950
	}
	if c.Master.Protocol == 0 {
		c.Master.Protocol = 86
	}
	if c.Master.MaxServers == 0 {
		c.Master.MaxServers = 512
	}
	if c.Master.TimeoutSeconds == 0 {
		c.Master.TimeoutSeconds = 1
	}
	if c.Refresh.IntervalSeconds == 0 {
		c.Refresh.IntervalSeconds = 30
	}
	if c.Refresh.FailureThreshold == nil {
		threshold := 3
		c.Refresh.FailureThreshold = &threshold
	}
	if c.Tray.HighPlayerCount == 0 {
		c.Tray.HighPlayerCount = 6
	}
	if c.Tray.MaxMenuServers == 0 {
		c.Tray.MaxMenuServers = 10
	}
	if c.Updates.CheckOnStartup == nil {
		enabled := true
		c.Updates.CheckOnStartup = &enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Master.Port < 1 || c.Master.Port > 65535 {
		return fmt.Errorf("master.port must be in 1..65535, got %d", c.Master.Port)
	}
	if c.Master.MaxServers < 1 {
		return fmt.Errorf("master.max_servers must be positive, got %d", c.Master.MaxServers)
	}
	if c.Master.TimeoutSeconds < 1 {
		return fmt.Errorf("master.timeout_seconds must be positive, got %d", c.Master.TimeoutSeconds)
	}
	if c.Refresh.IntervalSeconds < 5 {
		return fmt.Errorf("refresh.interval_seconds must be at least 5, got %d", c.Refresh.IntervalSeconds)
	}
	if c.Refresh.Threshold() < 0 {
		return fmt.Errorf("refresh.failure_threshold must not be negative, got %d", c.Refresh.Threshold())
	}
	if c.Tray.MaxMenuServers < 1 {
		return fmt.Errorf("tray.max_menu_servers must be positive, got %d", c.Tray.MaxMenuServers)
	}
	return nil
}
