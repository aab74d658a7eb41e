// Package semantic provides triage.Analyzer implementations backed by AWS
// Comprehend or an OpenAI-compatible chat completion API.
package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smartclass/triage/internal/triage"
)

// New creates the analyzer selected by cfg.Provider, wrapped with request
// logging. The "none" provider returns a nil analyzer, which makes every
// validation fall back to the local classification.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (triage.Analyzer, error) {
	var (
		base triage.Analyzer
		err  error
	)

	switch cfg.Provider {
	case ProviderComprehend:
		base, err = NewComprehendFromConfig(ctx, cfg.Region)
	case ProviderOpenAI:
		base, err = NewLLM(cfg.OpenAI)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s analyzer: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, logger), nil
}

type loggingAnalyzer struct {
	inner    triage.Analyzer
	provider string
	logger   *slog.Logger
}

// WithLogging wraps an Analyzer so every call is logged with its latency.
func WithLogging(a triage.Analyzer, provider string, logger *slog.Logger) triage.Analyzer {
	return &loggingAnalyzer{
		inner:    a,
		provider: provider,
		logger:   logger.With("system", "semantic", "provider", provider),
	}
}

func (l *loggingAnalyzer) Sentiment(ctx context.Context, text, language string) (triage.SentimentScores, error) {
	start := time.Now()
	scores, err := l.inner.Sentiment(ctx, text, language)
	l.record("sentiment", start, err)
	return scores, err
}

func (l *loggingAnalyzer) KeyPhrases(ctx context.Context, text, language string) ([]triage.KeyPhrase, error) {
	start := time.Now()
	phrases, err := l.inner.KeyPhrases(ctx, text, language)
	l.record("key_phrases", start, err, "count", len(phrases))
	return phrases, err
}

func (l *loggingAnalyzer) record(op string, start time.Time, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "latency_ms", time.Since(start).Milliseconds())
	if err != nil {
		l.logger.Warn("analyzer call failed", append(attrs, "error", err)...)
		return
	}
	l.logger.Debug("analyzer call", attrs...)
}
