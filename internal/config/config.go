package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/semantic"
	"github.com/smartclass/triage/pkg/database"
	"github.com/smartclass/triage/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTriageEnv             = "TRIAGE_ENV"
	EnvTriageShutdownTimeout = "TRIAGE_SHUTDOWN_TIMEOUT"
	EnvTriageVersion         = "TRIAGE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TRIAGE_DB_HOST",
	Port:            "TRIAGE_DB_PORT",
	Name:            "TRIAGE_DB_NAME",
	User:            "TRIAGE_DB_USER",
	Password:        "TRIAGE_DB_PASSWORD",
	SSLMode:         "TRIAGE_DB_SSL_MODE",
	MaxOpenConns:    "TRIAGE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TRIAGE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TRIAGE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TRIAGE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "TRIAGE_STORAGE_CONTAINER_NAME",
	ConnectionString: "TRIAGE_STORAGE_CONNECTION_STRING",
	MaxRetries:       "TRIAGE_STORAGE_MAX_RETRIES",
}

var semanticEnv = &semantic.Env{
	Provider:      "TRIAGE_SEMANTIC_PROVIDER",
	Timeout:       "TRIAGE_SEMANTIC_TIMEOUT",
	Region:        "TRIAGE_SEMANTIC_REGION",
	OpenAIAPIKey:  "TRIAGE_OPENAI_API_KEY",
	OpenAIModel:   "TRIAGE_OPENAI_MODEL",
	OpenAIBaseURL: "TRIAGE_OPENAI_BASE_URL",
}

var notifyEnv = &notify.Env{
	Provider:          "TRIAGE_NOTIFY_PROVIDER",
	DashboardURL:      "TRIAGE_NOTIFY_DASHBOARD_URL",
	KafkaBrokers:      "TRIAGE_KAFKA_BROKERS",
	KafkaTopic:        "TRIAGE_KAFKA_TOPIC",
	KafkaSummaryTopic: "TRIAGE_KAFKA_SUMMARY_TOPIC",
	SNSTopicARN:       "TRIAGE_SNS_TOPIC_ARN",
	SNSRegion:         "TRIAGE_SNS_REGION",
}

// Config is the root of config.toml. Each table is owned by the package
// that consumes it.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Triage          TriageConfig    `toml:"triage"`
	Semantic        semantic.Config `toml:"semantic"`
	Notify          notify.Config   `toml:"notify"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env names the active deployment. It selects the config.<env>.toml
// overlay and defaults to "local".
func (c *Config) Env() string {
	return fallback(os.Getenv(EnvTriageEnv), "local")
}

// ShutdownTimeoutDuration is ShutdownTimeout parsed. Load has already
// rejected unparsable values.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Load builds the configuration from, in increasing precedence, built-in
// defaults, config.toml, config.$TRIAGE_ENV.toml and TRIAGE_* variables.
// Both files are optional.
func Load() (*Config, error) {
	cfg := &Config{}

	if exists(BaseConfigFile) {
		base, err := decode(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = base
	}

	if env := os.Getenv(EnvTriageEnv); env != "" {
		if path := fmt.Sprintf(OverlayConfigPattern, env); exists(path) {
			overlay, err := decode(path)
			if err != nil {
				return nil, fmt.Errorf("load overlay %s: %w", path, err)
			}
			cfg.Merge(overlay)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge layers overlay onto c table by table. Empty values in overlay
// leave c unchanged.
func (c *Config) Merge(overlay *Config) {
	overrideString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	overrideString(&c.Version, overlay.Version)

	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Triage.Merge(&overlay.Triage)
	c.Semantic.Merge(&overlay.Semantic)
	c.Notify.Merge(&overlay.Notify)
}

func (c *Config) finalize() error {
	c.ShutdownTimeout = fallback(c.ShutdownTimeout, "30s")
	c.Version = fallback(c.Version, "0.1.0")
	overrideString(&c.ShutdownTimeout, os.Getenv(EnvTriageShutdownTimeout))
	overrideString(&c.Version, os.Getenv(EnvTriageVersion))

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"triage", c.Triage.Finalize},
		{"semantic", func() error { return c.Semantic.Finalize(semanticEnv) }},
		{"notify", func() error { return c.Notify.Finalize(notifyEnv) }},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func decode(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
