package batches

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config holds batch orchestration tuning parameters.
type Config struct {
	Workers int `toml:"workers"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers string
}

// Finalize applies defaults, environment variable overrides, and validation.
// Workers defaults to the available CPU parallelism.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *Config) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Workers = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
