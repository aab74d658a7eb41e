package notify

import (
	"fmt"
	"os"
	"strings"
)

const (
	ProviderKafka = "kafka"
	ProviderSNS   = "sns"
	ProviderLog   = "log"
)

// Config selects and configures the notification channel.
type Config struct {
	Provider     string      `toml:"provider"`
	DashboardURL string      `toml:"dashboard_url"`
	Kafka        KafkaConfig `toml:"kafka"`
	SNS          SNSConfig   `toml:"sns"`
}

// KafkaConfig holds broker and topic settings.
type KafkaConfig struct {
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	SummaryTopic string   `toml:"summary_topic"`
}

// SNSConfig holds the topic and region for e-mail delivery.
type SNSConfig struct {
	TopicARN string `toml:"topic_arn"`
	Region   string `toml:"region"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider          string
	DashboardURL      string
	KafkaBrokers      string
	KafkaTopic        string
	KafkaSummaryTopic string
	SNSTopicARN       string
	SNSRegion         string
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
	if overlay.DashboardURL != "" {
		c.DashboardURL = overlay.DashboardURL
	}
	if len(overlay.Kafka.Brokers) > 0 {
		c.Kafka.Brokers = overlay.Kafka.Brokers
	}
	if overlay.Kafka.Topic != "" {
		c.Kafka.Topic = overlay.Kafka.Topic
	}
	if overlay.Kafka.SummaryTopic != "" {
		c.Kafka.SummaryTopic = overlay.Kafka.SummaryTopic
	}
	if overlay.SNS.TopicARN != "" {
		c.SNS.TopicARN = overlay.SNS.TopicARN
	}
	if overlay.SNS.Region != "" {
		c.SNS.Region = overlay.SNS.Region
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLog
	}
	if c.DashboardURL == "" {
		c.DashboardURL = "http://localhost:8080/professor/"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "triage.questions"
	}
	if c.Kafka.SummaryTopic == "" {
		c.Kafka.SummaryTopic = "triage.summaries"
	}
	if c.SNS.Region == "" {
		c.SNS.Region = "us-east-1"
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
	set(env.DashboardURL, &c.DashboardURL)
	set(env.KafkaTopic, &c.Kafka.Topic)
	set(env.KafkaSummaryTopic, &c.Kafka.SummaryTopic)
	set(env.SNSTopicARN, &c.SNS.TopicARN)
	set(env.SNSRegion, &c.SNS.Region)

	if env.KafkaBrokers != "" {
		if v := os.Getenv(env.KafkaBrokers); v != "" {
			var brokers []string
			for _, b := range strings.Split(v, ",") {
				if b = strings.TrimSpace(b); b != "" {
					brokers = append(brokers, b)
				}
			}
			c.Kafka.Brokers = brokers
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers required")
		}
	case ProviderSNS:
		if c.SNS.TopicARN == "" {
			return fmt.Errorf("sns topic_arn required")
		}
	case ProviderLog:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}
