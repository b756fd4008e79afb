// Package config loads neurodose configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds all neurodose configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Sleep    SleepConfig    `yaml:"sleep"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Bind        string   `yaml:"bind"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // empty: store.DefaultDBPath()
}

type CatalogConfig struct {
	Path string `yaml:"path"` // empty: built-in compounds
}

type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	FeedSize int           `yaml:"feed_size"`
}

// SleepConfig is the schedule used until one is stored through the API.
type SleepConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Mode  string `yaml:"mode"`  // dev, prod
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Monitor: MonitorConfig{
			Enabled:  true,
			Interval: time.Minute,
			FeedSize: 100,
		},
		Sleep: SleepConfig{
			Start: "22:00",
			End:   "06:00",
		},
		Log: LogConfig{
			Level: "info",
			Mode:  "dev",
		},
	}
}

// DefaultPath returns ~/.neurodose/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".neurodose", "config.yaml"), nil
}

// Load overlays the YAML file at path onto the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("NEURODOSE_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("NEURODOSE_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("NEURODOSE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("NEURODOSE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigurationError{Field: "NEURODOSE_PORT", Value: v, Reason: "must be an integer"}
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks ranges and the sleep window.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &domain.ConfigurationError{Field: "server.port", Value: strconv.Itoa(c.Server.Port), Reason: "must be 1-65535"}
	}
	if c.Monitor.Interval <= 0 {
		return &domain.ConfigurationError{Field: "monitor.interval", Value: c.Monitor.Interval.String(), Reason: "must be positive"}
	}
	if c.Monitor.FeedSize <= 0 {
		return &domain.ConfigurationError{Field: "monitor.feed_size", Value: strconv.Itoa(c.Monitor.FeedSize), Reason: "must be positive"}
	}
	if _, err := c.SleepSchedule(); err != nil {
		return err
	}
	return nil
}

// SleepSchedule parses the configured sleep window.
func (c *Config) SleepSchedule() (domain.SleepSchedule, error) {
	return domain.NewSleepSchedule(c.Sleep.Start, c.Sleep.End)
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// ServerURL returns the URL clients use to reach the server.
func (c *Config) ServerURL() string {
	host := c.Server.Bind
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}
