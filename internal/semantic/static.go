package semantic

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/smartclass/triage/internal/triage"
)

// Static returns fixed signals. It is deterministic and used as a test double
// and for offline dry runs.
type Static struct {
	Scores  triage.SentimentScores
	Phrases []triage.KeyPhrase
	Err     error
	Delay   time.Duration

	calls atomic.Int64
}

func (s *Static) Sentiment(ctx context.Context, _, _ string) (triage.SentimentScores, error) {
	if err := s.wait(ctx); err != nil {
		return triage.SentimentScores{}, err
	}
	return s.Scores, nil
}

func (s *Static) KeyPhrases(ctx context.Context, _, _ string) ([]triage.KeyPhrase, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.Phrases, nil
}

// Calls returns the number of analyzer calls made so far.
func (s *Static) Calls() int64 {
	return s.calls.Load()
}

func (s *Static) wait(ctx context.Context) error {
	s.calls.Add(1)

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.Err
}
