package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "TRIAGE_SERVER_HOST"
	EnvServerPort            = "TRIAGE_SERVER_PORT"
	EnvServerReadTimeout     = "TRIAGE_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "TRIAGE_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "TRIAGE_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener settings. Timeouts are Go duration strings.
// WriteTimeout must cover a submission that waits on the semantic analyzer.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	overrideString(&c.Host, overlay.Host)
	overrideString(&c.ReadTimeout, overlay.ReadTimeout)
	overrideString(&c.WriteTimeout, overlay.WriteTimeout)
	overrideString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
}

func (c *ServerConfig) loadDefaults() {
	c.Host = fallback(c.Host, "0.0.0.0")
	c.ReadTimeout = fallback(c.ReadTimeout, "15s")
	c.WriteTimeout = fallback(c.WriteTimeout, "30s")
	c.ShutdownTimeout = fallback(c.ShutdownTimeout, "15s")
	if c.Port == 0 {
		c.Port = 8080
	}
}

func (c *ServerConfig) loadEnv() {
	overrideString(&c.Host, os.Getenv(EnvServerHost))
	overrideString(&c.ReadTimeout, os.Getenv(EnvServerReadTimeout))
	overrideString(&c.WriteTimeout, os.Getenv(EnvServerWriteTimeout))
	overrideString(&c.ShutdownTimeout, os.Getenv(EnvServerShutdownTimeout))
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
	}
	return nil
}

// overrideString replaces *dst when v is non-empty.
func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// mustDuration parses a duration that validate has already accepted.
func mustDuration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
