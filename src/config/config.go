package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"ticker-desk/src/models"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is used when neither the environment nor the YAML file name a backend.
const DefaultAPIBase = "http://localhost:8000"

// Environment variables consulted by applyEnvOverrides
const (
	EnvInternalAPIURL = "INTERNAL_API_URL"
	EnvPublicAPIURL   = "NEXT_PUBLIC_API_URL"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvLogLevel       = "TICKERDESK_LOG_LEVEL"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. An empty path yields the defaults.
func NewConfig(configPath string) (*Config, error) {
	var modelConfig models.MConfig

	// 1. Read and unmarshal the YAML file content
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	config := &Config{MConfig: &modelConfig}

	// 2. Fill gaps, then let the environment win
	config.applyDefaults()
	config.applyEnvOverrides()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "ticker-desk"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 15
	}

	b := &c.Backend
	if b.Host == "" {
		b.Host = "0.0.0.0"
	}
	if b.Port == 0 {
		b.Port = 8000
	}
	if b.GrpcHost == "" {
		b.GrpcHost = b.Host
	}
	if b.Workers == 0 {
		b.Workers = 4
	}
	if b.QueueSize == 0 {
		b.QueueSize = 256
	}
	if b.MaxRetries == 0 {
		b.MaxRetries = 3
	}
	if b.RetryDelaySeconds == 0 {
		b.RetryDelaySeconds = 60
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "./database.db"
	}

	n := &c.Network
	if n.RequestTimeout == 0 {
		n.RequestTimeout = 10
	}
	if n.MaxRetries == 0 {
		n.MaxRetries = 2
	}
	if n.ConcurrentRequests == 0 {
		n.ConcurrentRequests = 4
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnvOverrides() {
	c.APIBase = ResolveAPIBase(c.APIBase)

	if dbURL := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); dbURL != "" {
		switch {
		case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
			c.Storage.DBType = "postgres"
			c.Storage.DBConnectionString = dbURL
		default:
			c.Storage.DBType = "sqlite"
			c.Storage.DBPath = strings.TrimPrefix(dbURL, "sqlite:///")
		}
	}

	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		c.LogLevel = strings.ToUpper(lvl)
	}
}

// -----------------------------------------------------------------------------

// ResolveAPIBase picks the backend base URL: the internal override, then the
// public one, then the configured value, then DefaultAPIBase. Trailing
// slashes are dropped so "/api/..." can be appended directly.
func ResolveAPIBase(configured string) string {
	for _, candidate := range []string{
		os.Getenv(EnvInternalAPIURL),
		os.Getenv(EnvPublicAPIURL),
		configured,
	} {
		if v := strings.TrimSpace(candidate); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return DefaultAPIBase
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Web server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if err := validatePort("server", c.Port); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	u, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("invalid api base %q: %w", c.APIBase, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base %q must be an absolute http(s) URL", c.APIBase)
	}

	// Backend
	if err := validatePort("backend", c.Backend.Port); err != nil {
		return err
	}
	if c.Backend.GrpcPort != 0 {
		if err := validatePort("grpc", c.Backend.GrpcPort); err != nil {
			return err
		}
	}
	if c.Backend.Workers <= 0 {
		return fmt.Errorf("backend workers must be greater than 0")
	}
	if c.Backend.QueueSize <= 0 {
		return fmt.Errorf("backend queue size must be greater than 0")
	}
	if c.Backend.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Backend.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.Backend.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("network timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("network retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	return nil
}

func validatePort(what string, port int) error {
	if port <= 1024 || port > 65535 {
		return fmt.Errorf("invalid %s port number: %d (must be between 1025 and 65535)", what, port)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
