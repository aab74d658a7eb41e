// Package pagination normalizes page requests and shapes paged results.
package pagination

import (
	"errors"
	"os"
	"strconv"
)

// Config bounds the page sizes a client may ask for.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables read by Finalize.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize fills zero sizes with 20 and 100, applies env overrides, then
// checks that the default fits under the maximum.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.DefaultPageSize = positiveOr(c.DefaultPageSize, 20)
	c.MaxPageSize = positiveOr(c.MaxPageSize, 100)

	if env != nil {
		envInt(env.DefaultPageSize, &c.DefaultPageSize)
		envInt(env.MaxPageSize, &c.MaxPageSize)
	}

	switch {
	case c.DefaultPageSize < 1:
		return errors.New("default_page_size must be positive")
	case c.MaxPageSize < 1:
		return errors.New("max_page_size must be positive")
	case c.DefaultPageSize > c.MaxPageSize:
		return errors.New("default_page_size cannot exceed max_page_size")
	}
	return nil
}

// Merge takes every non-zero size from overlay.
func (c *Config) Merge(overlay *Config) {
	c.DefaultPageSize = nonZeroOr(overlay.DefaultPageSize, c.DefaultPageSize)
	c.MaxPageSize = nonZeroOr(overlay.MaxPageSize, c.MaxPageSize)
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nonZeroOr(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

// envInt overwrites dst when key names a variable holding an integer.
func envInt(key string, dst *int) {
	if key == "" {
		return
	}
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}
