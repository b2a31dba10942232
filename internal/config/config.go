// Package config provides YAML-based configuration loading for the pet server,
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	SSH     SSHConfig     `yaml:"ssh"`
	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address         string        `yaml:"address" env:"PET_HTTP_ADDR"`
	BasePath        string        `yaml:"base_path" env:"PET_BASE_PATH"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"PET_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PET_SHUTDOWN_TIMEOUT"`
}

// SSHConfig configures the SSH control panel.
type SSHConfig struct {
	Enabled     bool          `yaml:"enabled" env:"PET_SSH_ENABLED"`
	Address     string        `yaml:"address" env:"PET_SSH_ADDR"`
	HostKeyPath string        `yaml:"host_key" env:"PET_SSH_HOST_KEY"` // auto-generated under ~/.pet when empty
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"PET_SSH_IDLE_TIMEOUT"`
}

// JournalConfig configures the SQLite change journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" env:"PET_JOURNAL_ENABLED"`
	DBPath  string `yaml:"db_path" env:"PET_JOURNAL_DB"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level" env:"PET_LOG_LEVEL"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":3001",
			BasePath:        "/api/pet",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		SSH: SSHConfig{
			Enabled:     false,
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
		},
		Journal: JournalConfig{
			Enabled: true,
			DBPath:  "~/.pet/journal.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate normalizes the config and reports the first invalid field.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("config: server.address is required")
	}

	base := strings.TrimRight(strings.TrimSpace(c.Server.BasePath), "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		return fmt.Errorf("config: server.base_path %q must start with '/'", c.Server.BasePath)
	}
	c.Server.BasePath = base

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}

	if c.SSH.Enabled {
		if strings.TrimSpace(c.SSH.Address) == "" {
			return errors.New("config: ssh.address is required when ssh is enabled")
		}
		if c.SSH.IdleTimeout <= 0 {
			return fmt.Errorf("config: ssh.idle_timeout must be positive, got %s", c.SSH.IdleTimeout)
		}
	}

	if c.Journal.Enabled && strings.TrimSpace(c.Journal.DBPath) == "" {
		return errors.New("config: journal.db_path is required when the journal is enabled")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}

	return nil
}
