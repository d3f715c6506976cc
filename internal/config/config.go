// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all contacts configuration.
type Config struct {
	API    API    `yaml:"api"`
	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`
}

// API holds settings for talking to the contacts backend.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // Empty means stderr (or the ui default file).
}

// Server holds settings for the development backend.
type Server struct {
	Addr  string `yaml:"addr"`
	Store string `yaml:"store"` // "memory" | "file" | "postgres"
	DSN   string `yaml:"dsn"`   // Postgres connection string
	File  string `yaml:"file"`  // Snapshot path for the file store
	Table string `yaml:"table"` // Postgres table; empty means "contacts"
	Seed  bool   `yaml:"seed"`  // Load seed contacts into an empty store
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
		Server: Server{
			Addr:  "localhost:5000",
			Store: "memory",
			Seed:  true,
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url cannot be empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %v", c.API.Timeout)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr cannot be empty")
	}
	switch c.Server.Store {
	case "memory":
	case "file":
		if c.Server.File == "" {
			return errors.New("config: server.file is required when server.store is \"file\"")
		}
	case "postgres":
		if c.Server.DSN == "" {
			return errors.New("config: server.dsn is required when server.store is \"postgres\"")
		}
	default:
		return fmt.Errorf("config: server.store must be \"memory\", \"file\" or \"postgres\", got %q", c.Server.Store)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTS_BASE_URL, CONTACTS_TIMEOUT, CONTACTS_LOG_LEVEL,
// CONTACTS_LOG_FILE, CONTACTS_DSN.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CONTACTS_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CONTACTS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTS_TIMEOUT %q: %w", v, err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("CONTACTS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CONTACTS_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("CONTACTS_DSN"); v != "" {
		c.Server.DSN = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	API    *rawAPI    `yaml:"api"`
	Log    *rawLog    `yaml:"log"`
	Server *rawServer `yaml:"server"`
}

type rawAPI struct {
	BaseURL *string        `yaml:"base_url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

type rawServer struct {
	Addr  *string `yaml:"addr"`
	Store *string `yaml:"store"`
	DSN   *string `yaml:"dsn"`
	File  *string `yaml:"file"`
	Table *string `yaml:"table"`
	Seed  *bool   `yaml:"seed"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.API != nil {
		if layer.API.BaseURL != nil {
			c.API.BaseURL = *layer.API.BaseURL
		}
		if layer.API.Timeout != nil {
			c.API.Timeout = *layer.API.Timeout
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
	if layer.Server != nil {
		if layer.Server.Addr != nil {
			c.Server.Addr = *layer.Server.Addr
		}
		if layer.Server.Store != nil {
			c.Server.Store = *layer.Server.Store
		}
		if layer.Server.DSN != nil {
			c.Server.DSN = *layer.Server.DSN
		}
		if layer.Server.File != nil {
			c.Server.File = *layer.Server.File
		}
		if layer.Server.Table != nil {
			c.Server.Table = *layer.Server.Table
		}
		if layer.Server.Seed != nil {
			c.Server.Seed = *layer.Server.Seed
		}
	}
}
