package semantic

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"github.com/smartclass/triage/internal/triage"
)

// ComprehendAPI is the subset of the Comprehend client used by the analyzer.
type ComprehendAPI interface {
	DetectSentiment(ctx context.Context, in *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
	DetectKeyPhrases(ctx context.Context, in *comprehend.DetectKeyPhrasesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectKeyPhrasesOutput, error)
}

// Comprehend analyzes text with AWS Comprehend.
type Comprehend struct {
	client ComprehendAPI
}

// NewComprehend wraps an existing Comprehend client.
func NewComprehend(client ComprehendAPI) *Comprehend {
	return &Comprehend{client: client}
}

// NewComprehendFromConfig loads the default AWS credential chain for region.
func NewComprehendFromConfig(ctx context.Context, region string) (*Comprehend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewComprehend(comprehend.NewFromConfig(awsCfg)), nil
}

func (c *Comprehend) Sentiment(ctx context.Context, text, language string) (triage.SentimentScores, error) {
	out, err := c.client.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(language),
	})
	if err != nil {
		return triage.SentimentScores{}, &ErrUnavailable{Provider: ProviderComprehend, Err: err}
	}
	if out.SentimentScore == nil {
		return triage.SentimentScores{}, &ErrInvalidResponse{Err: fmt.Errorf("missing sentiment score")}
	}

	s := out.SentimentScore
	return triage.SentimentScores{
		Positive: float64(aws.ToFloat32(s.Positive)),
		Negative: float64(aws.ToFloat32(s.Negative)),
		Neutral:  float64(aws.ToFloat32(s.Neutral)),
		Mixed:    float64(aws.ToFloat32(s.Mixed)),
	}, nil
}

func (c *Comprehend) KeyPhrases(ctx context.Context, text, language string) ([]triage.KeyPhrase, error) {
	out, err := c.client.DetectKeyPhrases(ctx, &comprehend.DetectKeyPhrasesInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(language),
	})
	if err != nil {
		return nil, &ErrUnavailable{Provider: ProviderComprehend, Err: err}
	}

	phrases := make([]triage.KeyPhrase, 0, len(out.KeyPhrases))
	for _, kp := range out.KeyPhrases {
		phrases = append(phrases, triage.KeyPhrase{
			Text:       aws.ToString(kp.Text),
			Confidence: float64(aws.ToFloat32(kp.Score)),
		})
	}
	return phrases, nil
}
