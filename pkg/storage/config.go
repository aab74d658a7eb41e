package storage

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultContainer  = "triage-audit"
	defaultMaxRetries = 3
	maxRetriesCeiling = 10
)

// Config locates the audit container. Storage stays disabled until a
// connection string is supplied.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	// MaxRetries bounds retries of failed blob requests. A negative value disables retries.
	MaxRetries int32 `toml:"max_retries"`
}

// Env names the environment variables read by Finalize.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxRetries       string
}

// Enabled reports whether a connection string is configured.
func (c *Config) Enabled() bool {
	return c.ConnectionString != ""
}

// Finalize fills defaults, applies env overrides and validates.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = defaultContainer
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}

	if env != nil {
		setFromEnv(env.ContainerName, &c.ContainerName)
		setFromEnv(env.ConnectionString, &c.ConnectionString)
		if v := getenv(env.MaxRetries); v != "" {
			if n, err := strconv.ParseInt(v, 10, 32); err == nil {
				c.MaxRetries = int32(n)
			}
		}
	}

	switch {
	case c.Enabled() && c.ContainerName == "":
		return fmt.Errorf("container_name required")
	case c.MaxRetries > maxRetriesCeiling:
		return fmt.Errorf("max_retries must not exceed %d, got %d", maxRetriesCeiling, c.MaxRetries)
	}
	return nil
}

// Merge takes every non-zero field from overlay.
func (c *Config) Merge(overlay *Config) {
	if v := overlay.ContainerName; v != "" {
		c.ContainerName = v
	}
	if v := overlay.ConnectionString; v != "" {
		c.ConnectionString = v
	}
	if v := overlay.MaxRetries; v != 0 {
		c.MaxRetries = v
	}
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func setFromEnv(key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}
