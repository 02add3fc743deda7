package notify

import (
	"fmt"
	"os"
	"time"
)

// Config holds notification dispatch settings.
type Config struct {
	APIKey      string `toml:"api_key"`
	SenderEmail string `toml:"sender_email"`
	SenderName  string `toml:"sender_name"`
	SendTimeout string `toml:"send_timeout"`
	PublicURL   string `toml:"public_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	SendTimeout string
	PublicURL   string
}

// SendTimeoutDuration returns SendTimeout as a time.Duration.
func (c *Config) SendTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.SendTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.SenderEmail != "" {
		c.SenderEmail = overlay.SenderEmail
	}
	if overlay.SenderName != "" {
		c.SenderName = overlay.SenderName
	}
	if overlay.SendTimeout != "" {
		c.SendTimeout = overlay.SendTimeout
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
}

func (c *Config) loadDefaults() {
	if c.SendTimeout == "" {
		c.SendTimeout = "15s"
	}
	if c.SenderName == "" {
		c.SenderName = "Certificates"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.SenderEmail != "" {
		if v := os.Getenv(env.SenderEmail); v != "" {
			c.SenderEmail = v
		}
	}
	if env.SenderName != "" {
		if v := os.Getenv(env.SenderName); v != "" {
			c.SenderName = v
		}
	}
	if env.SendTimeout != "" {
		if v := os.Getenv(env.SendTimeout); v != "" {
			c.SendTimeout = v
		}
	}
	if env.PublicURL != "" {
		if v := os.Getenv(env.PublicURL); v != "" {
			c.PublicURL = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.SendTimeout); err != nil {
		return fmt.Errorf("invalid send_timeout: %w", err)
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("sender_email is required")
	}
	if c.PublicURL == "" {
		return fmt.Errorf("public_url is required")
	}
	return nil
}
