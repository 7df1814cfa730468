package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingToken indicates no bearer token was configured. The gateway
// refuses to start without one instead of falling back to a default.
var ErrMissingToken = errors.New("BEARER_TOKEN must be set (no default token exists)")

// Config represents the gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string        `yaml:"address"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
}

// BroadcastConfig contains advertising-control settings
type BroadcastConfig struct {
	Instance       int           `yaml:"instance"`        // hardware advertising instance id
	BtmgmtPath     string        `yaml:"btmgmt_path"`     // advertising-control binary
	CommandTimeout time.Duration `yaml:"command_timeout"` // bound on each btmgmt invocation
	MaxHold        time.Duration `yaml:"max_hold"`        // cap on a single broadcast duration
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Load builds the configuration from an optional YAML file plus environment
// overrides. path may be empty, in which case only environment variables and
// defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Expand environment variables in the config
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Auth.BearerToken == "" {
		return nil, ErrMissingToken
	}

	return &cfg, nil
}

// applyEnv lets environment variables override file values
func applyEnv(cfg *Config) {
	if v := os.Getenv("BEARER_TOKEN"); v != "" {
		cfg.Auth.BearerToken = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 15
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Broadcast.Instance == 0 {
		cfg.Broadcast.Instance = 1
	}
	if cfg.Broadcast.BtmgmtPath == "" {
		cfg.Broadcast.BtmgmtPath = "btmgmt"
	}
	if cfg.Broadcast.CommandTimeout == 0 {
		cfg.Broadcast.CommandTimeout = 10 * time.Second
	}
	if cfg.Broadcast.MaxHold == 0 {
		cfg.Broadcast.MaxHold = time.Hour
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
