package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by the notifier.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes question events and summaries as JSON, keyed by message id
// and summary date respectively.
type Kafka struct {
	questions MessageWriter
	summaries MessageWriter
	logger    *slog.Logger
}

// NewKafka creates writers for the question and summary topics.
func NewKafka(cfg *KafkaConfig, logger *slog.Logger) *Kafka {
	return NewKafkaWithWriters(
		&kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
		&kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.SummaryTopic,
			Balancer: &kafka.LeastBytes{},
		},
		logger,
	)
}

// NewKafkaWithWriters creates a Kafka notifier over existing writers.
func NewKafkaWithWriters(questions, summaries MessageWriter, logger *slog.Logger) *Kafka {
	return &Kafka{
		questions: questions,
		summaries: summaries,
		logger:    logger.With("system", "notify", "provider", ProviderKafka),
	}
}

func (k *Kafka) NewQuestion(ctx context.Context, event QuestionEvent) error {
	if err := k.send(ctx, k.questions, event.MessageID.String(), event); err != nil {
		return err
	}
	k.logger.Info("question event sent", "message_id", event.MessageID)
	return nil
}

func (k *Kafka) DailySummary(ctx context.Context, summary Summary) error {
	if err := k.send(ctx, k.summaries, summary.Date.Format("2006-01-02"), summary); err != nil {
		return err
	}
	k.logger.Info("summary sent", "date", summary.Date.Format("2006-01-02"))
	return nil
}

func (k *Kafka) Close() error {
	return errors.Join(k.questions.Close(), k.summaries.Close())
}

func (k *Kafka) send(ctx context.Context, w MessageWriter, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}
