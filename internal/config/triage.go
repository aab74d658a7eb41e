package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/smartclass/triage/internal/triage"
)

const (
	EnvTriageLexicalThreshold  = "TRIAGE_LEXICAL_THRESHOLD"
	EnvTriageSemanticThreshold = "TRIAGE_SEMANTIC_THRESHOLD"
	EnvTriageMinMessageLength  = "TRIAGE_MIN_MESSAGE_LENGTH"
	EnvTriageVocabularyPath    = "TRIAGE_VOCABULARY_PATH"
	EnvTriageLanguage          = "TRIAGE_LANGUAGE"
)

// TriageConfig holds the classifier thresholds and vocabulary source.
type TriageConfig struct {
	LexicalThreshold  float64 `toml:"lexical_threshold"`
	SemanticThreshold float64 `toml:"semantic_threshold"`
	MinMessageLength  int     `toml:"min_message_length"`
	VocabularyPath    string  `toml:"vocabulary_path"`
	Language          string  `toml:"language"`
}

// Vocabulary loads the configured vocabulary file, or the embedded default
// when no path is set.
func (c *TriageConfig) Vocabulary() (triage.Vocabulary, error) {
	if c.VocabularyPath == "" {
		return triage.DefaultVocabulary(), nil
	}
	return triage.LoadVocabulary(c.VocabularyPath)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *TriageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *TriageConfig) Merge(overlay *TriageConfig) {
	if overlay.LexicalThreshold != 0 {
		c.LexicalThreshold = overlay.LexicalThreshold
	}
	if overlay.SemanticThreshold != 0 {
		c.SemanticThreshold = overlay.SemanticThreshold
	}
	if overlay.MinMessageLength != 0 {
		c.MinMessageLength = overlay.MinMessageLength
	}
	if overlay.VocabularyPath != "" {
		c.VocabularyPath = overlay.VocabularyPath
	}
	if overlay.Language != "" {
		c.Language = overlay.Language
	}
}

func (c *TriageConfig) loadDefaults() {
	if c.LexicalThreshold == 0 {
		c.LexicalThreshold = triage.DefaultLexicalThreshold
	}
	if c.SemanticThreshold == 0 {
		c.SemanticThreshold = triage.DefaultSemanticThreshold
	}
	if c.MinMessageLength == 0 {
		c.MinMessageLength = triage.DefaultMinMessageLength
	}
	if c.Language == "" {
		c.Language = triage.DefaultLanguage
	}
}

func (c *TriageConfig) loadEnv() {
	if v := os.Getenv(EnvTriageLexicalThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.LexicalThreshold = f
		}
	}
	if v := os.Getenv(EnvTriageSemanticThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SemanticThreshold = f
		}
	}
	if v := os.Getenv(EnvTriageMinMessageLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinMessageLength = n
		}
	}
	if v := os.Getenv(EnvTriageVocabularyPath); v != "" {
		c.VocabularyPath = v
	}
	if v := os.Getenv(EnvTriageLanguage); v != "" {
		c.Language = v
	}
}

func (c *TriageConfig) validate() error {
	if c.SemanticThreshold <= 0 {
		return fmt.Errorf("semantic_threshold must be positive: %v", c.SemanticThreshold)
	}
	if c.MinMessageLength < 1 || c.MinMessageLength > triage.MaxMessageLength {
		return fmt.Errorf("min_message_length out of range: %d", c.MinMessageLength)
	}
	if c.VocabularyPath != "" {
		if _, err := os.Stat(c.VocabularyPath); err != nil {
			return fmt.Errorf("vocabulary_path: %w", err)
		}
	}
	return nil
}
