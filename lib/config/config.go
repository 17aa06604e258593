// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// ConfigEnvVar names the environment variable [Load] reads the config
// file path from.
const ConfigEnvVar = "RPDS_CONFIG"

// Config is the server configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Listen is the TCP socket address the server binds, as an IP
	// literal and port ("127.0.0.1:2583", "[::]:2583").
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ShutdownTimeout bounds how long in-flight requests may drain
	// after a shutdown signal.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodySize bounds request bodies, in bytes, after decompression.
	// Default: 1 MiB
	MaxBodySize int64 `yaml:"max_body_size"`

	// Database configures the SQLite database.
	Database DatabaseConfig `yaml:"database"`

	// Password configures the Argon2id password hasher.
	Password PasswordConfig `yaml:"password"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
// Zero values leave the base value in place.
type ConfigOverrides struct {
	Listen          string          `yaml:"listen,omitempty"`
	LogLevel        string          `yaml:"log_level,omitempty"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout,omitempty"`
	MaxBodySize     int64           `yaml:"max_body_size,omitempty"`
	Database        *DatabaseConfig `yaml:"database,omitempty"`
	Password        *PasswordConfig `yaml:"password,omitempty"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	// Path is the database file. The file is created if missing.
	Path string `yaml:"path"`

	// PoolSize is the number of pooled connections.
	// Default: 4
	PoolSize int `yaml:"pool_size"`
}

// PasswordConfig holds the Argon2id cost parameters used for newly
// hashed passwords. Stored hashes carry their own parameters.
type PasswordConfig struct {
	// MemoryCost is in KiB.
	// Default: 19456
	MemoryCost uint32 `yaml:"memory_cost"`

	// TimeCost is the number of passes.
	// Default: 2
	TimeCost uint32 `yaml:"time_cost"`

	// Parallelism is the number of lanes.
	// Default: 1
	Parallelism uint8 `yaml:"parallelism"`

	// Secret is an optional pepper mixed into every hash. Changing it
	// invalidates every stored hash. Required in production.
	Secret string `yaml:"secret"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file;
// the config file itself is still required.
func Default() *Config {
	return &Config{
		Environment:     Development,
		Listen:          "127.0.0.1:2583",
		LogLevel:        "info",
		ShutdownTimeout: 30 * time.Second,
		MaxBodySize:     1 << 20,
		Database: DatabaseConfig{
			Path:     "rpds.db",
			PoolSize: 4,
		},
		Password: PasswordConfig{
			MemoryCost:  19456,
			TimeCost:    2,
			Parallelism: 1,
		},
	}
}

// LoadDotenv loads KEY=VALUE pairs from path into the process
// environment without overriding variables that are already set. A
// missing file is not an error; a malformed one is.
func LoadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Load loads configuration from the file named by RPDS_CONFIG.
//
// There is no fallback: if RPDS_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(ConfigEnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your rpds.yaml config file, or use --config flag", ConfigEnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// section for the configured environment, and expands ${VAR} and
// ${VAR:-default} in listen, database.path, and password.secret.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Listen != "" {
		c.Listen = overrides.Listen
	}
	if overrides.LogLevel != "" {
		c.LogLevel = overrides.LogLevel
	}
	if overrides.ShutdownTimeout != 0 {
		c.ShutdownTimeout = overrides.ShutdownTimeout
	}
	if overrides.MaxBodySize != 0 {
		c.MaxBodySize = overrides.MaxBodySize
	}

	if overrides.Database != nil {
		if overrides.Database.Path != "" {
			c.Database.Path = overrides.Database.Path
		}
		if overrides.Database.PoolSize != 0 {
			c.Database.PoolSize = overrides.Database.PoolSize
		}
	}

	if overrides.Password != nil {
		if overrides.Password.MemoryCost != 0 {
			c.Password.MemoryCost = overrides.Password.MemoryCost
		}
		if overrides.Password.TimeCost != 0 {
			c.Password.TimeCost = overrides.Password.TimeCost
		}
		if overrides.Password.Parallelism != 0 {
			c.Password.Parallelism = overrides.Password.Parallelism
		}
		if overrides.Password.Secret != "" {
			c.Password.Secret = overrides.Password.Secret
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Listen = expandVars(c.Listen, vars)
	c.Database.Path = expandVars(c.Database.Path, vars)
	c.Password.Secret = expandVars(c.Password.Secret, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Level returns LogLevel as an slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ListenAddr returns Listen parsed as a socket address.
func (c *Config) ListenAddr() (netip.AddrPort, error) {
	addr, err := netip.ParseAddrPort(c.Listen)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("listen %q is not a socket address: %w", c.Listen, err)
	}
	return addr, nil
}

// Validate checks the configuration for errors. Every problem is
// reported, joined with errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if _, err := c.ListenAddr(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout))
	}

	if c.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("max_body_size must be positive, got %d", c.MaxBodySize))
	}

	if c.Database.Path == "" {
		errs = append(errs, fmt.Errorf("database.path is required"))
	}

	if c.Database.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("database.pool_size must be positive, got %d", c.Database.PoolSize))
	}

	if c.Environment == Production && c.Password.Secret == "" {
		errs = append(errs, fmt.Errorf("password.secret is required in production"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
