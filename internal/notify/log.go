package notify

import (
	"context"
	"log/slog"
)

// Log writes notifications to the service log instead of delivering them.
type Log struct {
	dashboardURL string
	logger       *slog.Logger
}

func NewLog(dashboardURL string, logger *slog.Logger) *Log {
	return &Log{
		dashboardURL: dashboardURL,
		logger:       logger.With("system", "notify", "provider", ProviderLog),
	}
}

func (l *Log) NewQuestion(_ context.Context, event QuestionEvent) error {
	l.logger.Info("new question",
		"message_id", event.MessageID,
		"author", event.Author,
		"confidence", event.Confidence,
		"dashboard", l.dashboardURL,
	)
	return nil
}

func (l *Log) DailySummary(_ context.Context, summary Summary) error {
	l.logger.Info("daily summary",
		"date", summary.Date.Format("2006-01-02"),
		"questions", summary.Questions,
		"answered", summary.Answered,
		"unanswered", summary.Unanswered,
		"corrected", summary.Corrected,
		"response_rate", summary.ResponseRate(),
	)
	return nil
}

func (l *Log) Close() error { return nil }
