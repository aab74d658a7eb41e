// Package notify delivers instructor notifications for accepted questions and
// daily summaries over Kafka, AWS SNS or the service log.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

// QuestionEvent announces a newly accepted question.
type QuestionEvent struct {
	MessageID  uuid.UUID `json:"message_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	Confidence int       `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewQuestionEvent builds an event; confidence in [0, 1] is reported as a percentage.
func NewQuestionEvent(id uuid.UUID, author, text string, confidence float64, at time.Time) QuestionEvent {
	return QuestionEvent{
		MessageID:  id,
		Author:     author,
		Text:       text,
		Confidence: int(math.Round(confidence * 100)),
		Timestamp:  at,
	}
}

// Summary is the daily digest of stored questions.
type Summary struct {
	Date       time.Time `json:"date"`
	Questions  int       `json:"questions"`
	Answered   int       `json:"answered"`
	Unanswered int       `json:"unanswered"`
	Corrected  int       `json:"corrected"`
}

// ResponseRate returns the answered share of questions as a whole percentage.
func (s Summary) ResponseRate() int {
	if s.Questions == 0 {
		return 0
	}
	return int(math.Round(float64(s.Answered) / float64(s.Questions) * 100))
}

// System delivers notifications. Delivery is best effort: callers report
// errors but never fail the triage result because of them.
type System interface {
	NewQuestion(ctx context.Context, event QuestionEvent) error
	DailySummary(ctx context.Context, summary Summary) error
	Close() error
}

// New creates the notifier selected by cfg.Provider.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderKafka:
		return NewKafka(&cfg.Kafka, logger), nil
	case ProviderSNS:
		s, err := NewSNSFromConfig(ctx, &cfg.SNS, cfg.DashboardURL, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case ProviderLog, "":
		return NewLog(cfg.DashboardURL, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
