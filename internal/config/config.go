package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/batches"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/notify"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/render"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/database"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSirEnv             = "SIR_ENV"
	EnvSirShutdownTimeout = "SIR_SHUTDOWN_TIMEOUT"
	EnvSirVersion         = "SIR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SIR_DB_HOST",
	Port:            "SIR_DB_PORT",
	Name:            "SIR_DB_NAME",
	User:            "SIR_DB_USER",
	Password:        "SIR_DB_PASSWORD",
	SSLMode:         "SIR_DB_SSL_MODE",
	MaxOpenConns:    "SIR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SIR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SIR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SIR_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "SIR_STORAGE_CONTAINER_NAME",
	ConnectionString: "SIR_STORAGE_CONNECTION_STRING",
}

var renderEnv = &render.Env{
	Timeout:      "SIR_RENDER_TIMEOUT",
	MaxRetries:   "SIR_RENDER_MAX_RETRIES",
	RetryBackoff: "SIR_RENDER_RETRY_BACKOFF",
}

var batchesEnv = &batches.Env{
	Workers: "SIR_BATCH_WORKERS",
}

var notifyEnv = &notify.Env{
	APIKey:      "SIR_NOTIFY_API_KEY",
	SenderEmail: "SIR_NOTIFY_SENDER_EMAIL",
	SenderName:  "SIR_NOTIFY_SENDER_NAME",
	SendTimeout: "SIR_NOTIFY_SEND_TIMEOUT",
	PublicURL:   "SIR_NOTIFY_PUBLIC_URL",
}

// Config is the root configuration for the certificate service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Render          render.Config   `toml:"render"`
	Batches         batches.Config  `toml:"batches"`
	Notify          notify.Config   `toml:"notify"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SIR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSirEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Render.Merge(&overlay.Render)
	c.Batches.Merge(&overlay.Batches)
	c.Notify.Merge(&overlay.Notify)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Render.Finalize(renderEnv); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Batches.Finalize(batchesEnv); err != nil {
		return fmt.Errorf("batches: %w", err)
	}
	if err := c.Notify.Finalize(notifyEnv); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSirShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSirVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSirEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
