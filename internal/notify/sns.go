package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const messageSource = "smartclass-triage"

// SNSAPI is the subset of the SNS client used by the notifier.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes plain-text notifications to a topic, typically with e-mail
// subscribers.
type SNS struct {
	client       SNSAPI
	topicARN     string
	dashboardURL string
	logger       *slog.Logger
}

// NewSNS creates an SNS notifier over an existing client.
func NewSNS(client SNSAPI, topicARN, dashboardURL string, logger *slog.Logger) *SNS {
	return &SNS{
		client:       client,
		topicARN:     topicARN,
		dashboardURL: dashboardURL,
		logger:       logger.With("system", "notify", "provider", ProviderSNS),
	}
}

// NewSNSFromConfig loads the default AWS credential chain for cfg.Region.
func NewSNSFromConfig(ctx context.Context, cfg *SNSConfig, dashboardURL string, logger *slog.Logger) (*SNS, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNS(sns.NewFromConfig(awsCfg), cfg.TopicARN, dashboardURL, logger), nil
}

func (s *SNS) NewQuestion(ctx context.Context, event QuestionEvent) error {
	subject, body := FormatQuestion(event, s.dashboardURL)
	return s.publish(ctx, subject, body, "high")
}

func (s *SNS) DailySummary(ctx context.Context, summary Summary) error {
	subject, body := FormatSummary(summary, s.dashboardURL)
	return s.publish(ctx, subject, body, "normal")
}

func (s *SNS) Close() error { return nil }

func (s *SNS) publish(ctx context.Context, subject, body, priority string) error {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"priority": {DataType: aws.String("String"), StringValue: aws.String(priority)},
			"source":   {DataType: aws.String("String"), StringValue: aws.String(messageSource)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	s.logger.Info("notification published", "subject", subject, "sns_message_id", aws.ToString(out.MessageId))
	return nil
}
