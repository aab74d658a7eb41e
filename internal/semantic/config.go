package semantic

import (
	"fmt"
	"os"
	"time"
)

const (
	ProviderComprehend = "comprehend"
	ProviderOpenAI     = "openai"
	ProviderNone       = "none"
)

// Config selects and configures the semantic analyzer.
type Config struct {
	Provider string       `toml:"provider"`
	Timeout  string       `toml:"timeout"`
	Region   string       `toml:"region"`
	OpenAI   OpenAIConfig `toml:"openai"`
}

// OpenAIConfig holds settings for OpenAI-compatible chat completion APIs.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider      string
	Timeout       string
	Region        string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.OpenAI.APIKey != "" {
		c.OpenAI.APIKey = overlay.OpenAI.APIKey
	}
	if overlay.OpenAI.Model != "" {
		c.OpenAI.Model = overlay.OpenAI.Model
	}
	if overlay.OpenAI.BaseURL != "" {
		c.OpenAI.BaseURL = overlay.OpenAI.BaseURL
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.Timeout, &c.Timeout)
	set(env.Region, &c.Region)
	set(env.OpenAIAPIKey, &c.OpenAI.APIKey)
	set(env.OpenAIModel, &c.OpenAI.Model)
	set(env.OpenAIBaseURL, &c.OpenAI.BaseURL)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderComprehend, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if c.Provider == ProviderOpenAI && c.OpenAI.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
