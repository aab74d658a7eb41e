package triage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/smartclass/triage/internal/triage"
)

type fakeAnalyzer struct {
	sentimentFn  func(ctx context.Context, text, language string) (triage.SentimentScores, error)
	keyPhrasesFn func(ctx context.Context, text, language string) ([]triage.KeyPhrase, error)
}

func (f *fakeAnalyzer) Sentiment(ctx context.Context, text, language string) (triage.SentimentScores, error) {
	return f.sentimentFn(ctx, text, language)
}

func (f *fakeAnalyzer) KeyPhrases(ctx context.Context, text, language string) ([]triage.KeyPhrase, error) {
	return f.keyPhrasesFn(ctx, text, language)
}

func staticAnalyzer(scores triage.SentimentScores, phrases []triage.KeyPhrase) *fakeAnalyzer {
	return &fakeAnalyzer{
		sentimentFn: func(context.Context, string, string) (triage.SentimentScores, error) {
			return scores, nil
		},
		keyPhrasesFn: func(context.Context, string, string) ([]triage.KeyPhrase, error) {
			return phrases, nil
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newValidator(t *testing.T, a triage.Analyzer, opts ...triage.ValidatorOption) *triage.Validator {
	t.Helper()
	lex, err := triage.DefaultVocabulary().Compile()
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return triage.NewValidator(a, lex, discardLogger(), opts...)
}

func localResult(label triage.Label) triage.ClassificationResult {
	return triage.ClassificationResult{
		Label:      label,
		Score:      5,
		Confidence: 80,
		Reason:     string(label) + " detected: test",
	}
}

func TestValidateScoring(t *testing.T) {
	tests := []struct {
		name       string
		scores     triage.SentimentScores
		phrases    []triage.KeyPhrase
		local      triage.Label
		label      triage.Label
		aiScore    float64
		confidence float64
		reason     string
	}{
		{
			name:   "confirms local question",
			scores: triage.SentimentScores{Negative: 0.1, Neutral: 0.8, Positive: 0.1},
			phrases: []triage.KeyPhrase{
				{Text: "função lambda", Confidence: 0.9},
				{Text: "o professor", Confidence: 0.85},
			},
			local:      triage.LabelDuvida,
			label:      triage.LabelDuvida,
			aiScore:    66,
			confidence: 0.76,
			reason:     "neutral tone typical of technical questions; 1 technical key phrase(s); high confidence key phrases; local rules indicate a question",
		},
		{
			name:       "overrides local interaction",
			scores:     triage.SentimentScores{Negative: 0.6, Neutral: 0.2, Positive: 0.2},
			phrases:    []triage.KeyPhrase{{Text: "bucket S3", Confidence: 0.95}},
			local:      triage.LabelInteracao,
			label:      triage.LabelDuvida,
			aiScore:    58,
			confidence: 0.68,
			reason:     "negative sentiment (60%); 1 technical key phrase(s); high confidence key phrases; overrides local INTERACAO",
		},
		{
			name:       "no indicators",
			scores:     triage.SentimentScores{Positive: 0.9, Neutral: 0.1},
			local:      triage.LabelInteracao,
			label:      triage.LabelInteracao,
			aiScore:    0,
			confidence: 0.9,
			reason:     "no clear semantic indicators",
		},
		{
			name:       "overrides local question",
			scores:     triage.SentimentScores{Positive: 0.95, Neutral: 0.05},
			phrases:    []triage.KeyPhrase{{Text: "pessoal", Confidence: 0.5}},
			local:      triage.LabelDuvida,
			label:      triage.LabelInteracao,
			aiScore:    10,
			confidence: 0.8,
			reason:     "local rules indicate a question; overrides local DUVIDA",
		},
		{
			name:   "confidence capped",
			scores: triage.SentimentScores{Negative: 0.9, Neutral: 0.1},
			phrases: []triage.KeyPhrase{
				{Text: "lambda", Confidence: 0.9},
				{Text: "bucket", Confidence: 0.9},
				{Text: "console aws", Confidence: 0.9},
				{Text: "política iam", Confidence: 0.9},
			},
			local:      triage.LabelDuvida,
			label:      triage.LabelDuvida,
			aiScore:    152,
			confidence: 0.99,
			reason:     "negative sentiment (90%); 4 technical key phrase(s); high confidence key phrases; local rules indicate a question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(t, staticAnalyzer(tt.scores, tt.phrases))
			got := v.Validate(context.Background(), "texto", localResult(tt.local))

			if got.Fallback {
				t.Fatalf("Fallback = true, error %q", got.Debug.Error)
			}
			if got.Label != tt.label {
				t.Errorf("Label = %s, want %s", got.Label, tt.label)
			}
			if got.AIScore != tt.aiScore {
				t.Errorf("AIScore = %v, want %v", got.AIScore, tt.aiScore)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.confidence)
			}
			if got.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.reason)
			}
			if got.Local.Label != tt.local {
				t.Errorf("Local.Label = %s, want %s", got.Local.Label, tt.local)
			}
			if got.Debug.LocalLabel != tt.local {
				t.Errorf("Debug.LocalLabel = %s, want %s", got.Debug.LocalLabel, tt.local)
			}
		})
	}
}

func TestValidateSemanticThreshold(t *testing.T) {
	a := staticAnalyzer(triage.SentimentScores{Neutral: 1}, nil)
	v := newValidator(t, a, triage.WithSemanticThreshold(20))

	got := v.Validate(context.Background(), "texto", localResult(triage.LabelInteracao))
	if got.Label != triage.LabelDuvida {
		t.Errorf("Label = %s, want DUVIDA at aiScore == threshold", got.Label)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
}

func TestValidateFallback(t *testing.T) {
	failing := &fakeAnalyzer{
		sentimentFn: func(context.Context, string, string) (triage.SentimentScores, error) {
			return triage.SentimentScores{}, errors.New("throttled")
		},
		keyPhrasesFn: func(context.Context, string, string) ([]triage.KeyPhrase, error) {
			return nil, nil
		},
	}

	blocking := &fakeAnalyzer{
		sentimentFn: func(ctx context.Context, _, _ string) (triage.SentimentScores, error) {
			<-ctx.Done()
			return triage.SentimentScores{}, ctx.Err()
		},
		keyPhrasesFn: func(ctx context.Context, _, _ string) ([]triage.KeyPhrase, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	invalid := staticAnalyzer(triage.SentimentScores{Negative: 1.5}, nil)

	tests := []struct {
		name     string
		analyzer triage.Analyzer
		local    triage.Label
		errText  string
	}{
		{"analyzer error", failing, triage.LabelDuvida, "throttled"},
		{"analyzer not configured", nil, triage.LabelInteracao, triage.ErrAnalyzerUnavailable.Error()},
		{"timeout", blocking, triage.LabelDuvida, "timeout"},
		{"invalid probability", invalid, triage.LabelInteracao, triage.ErrInvalidSignal.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(t, tt.analyzer, triage.WithTimeout(20*time.Millisecond))
			got := v.Validate(context.Background(), "texto", localResult(tt.local))

			if !got.Fallback {
				t.Fatal("Fallback = false, want true")
			}
			if got.Label != tt.local {
				t.Errorf("Label = %s, want local %s", got.Label, tt.local)
			}
			if got.Confidence != 0.3 {
				t.Errorf("Confidence = %v, want 0.3", got.Confidence)
			}
			if got.AIScore != 0 {
				t.Errorf("AIScore = %v, want 0", got.AIScore)
			}
			if got.Reason != triage.FallbackReason {
				t.Errorf("Reason = %q, want %q", got.Reason, triage.FallbackReason)
			}
			if !strings.Contains(got.Debug.Error, tt.errText) {
				t.Errorf("Debug.Error = %q, want it to contain %q", got.Debug.Error, tt.errText)
			}
		})
	}
}

func TestValidateCallsRunConcurrently(t *testing.T) {
	sentimentStarted := make(chan struct{})
	phrasesStarted := make(chan struct{})

	a := &fakeAnalyzer{
		sentimentFn: func(ctx context.Context, _, _ string) (triage.SentimentScores, error) {
			close(sentimentStarted)
			select {
			case <-phrasesStarted:
				return triage.SentimentScores{Neutral: 1}, nil
			case <-ctx.Done():
				return triage.SentimentScores{}, ctx.Err()
			}
		},
		keyPhrasesFn: func(ctx context.Context, _, _ string) ([]triage.KeyPhrase, error) {
			close(phrasesStarted)
			select {
			case <-sentimentStarted:
				return []triage.KeyPhrase{{Text: "lambda", Confidence: 0.9}}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}

	v := newValidator(t, a, triage.WithTimeout(time.Second))
	got := v.Validate(context.Background(), "texto", localResult(triage.LabelDuvida))

	if got.Fallback {
		t.Fatalf("Fallback = true, error %q", got.Debug.Error)
	}
	if got.AIScore != 70 {
		t.Errorf("AIScore = %v, want 70", got.AIScore)
	}
}

func TestValidatePassesLanguage(t *testing.T) {
	var gotLang string
	a := &fakeAnalyzer{
		sentimentFn: func(_ context.Context, _, lang string) (triage.SentimentScores, error) {
			gotLang = lang
			return triage.SentimentScores{}, nil
		},
		keyPhrasesFn: func(context.Context, string, string) ([]triage.KeyPhrase, error) {
			return nil, nil
		},
	}

	v := newValidator(t, a, triage.WithLanguage("es"))
	v.Validate(context.Background(), "texto", localResult(triage.LabelInteracao))

	if gotLang != "es" {
		t.Errorf("language = %q, want es", gotLang)
	}
}
