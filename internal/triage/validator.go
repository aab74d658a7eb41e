package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSemanticThreshold is the aiScore at or above which a message is a question.
	DefaultSemanticThreshold = 40.0
	// DefaultLanguage is the language code sent to the analyzer.
	DefaultLanguage = "pt"
	// DefaultAnalyzerTimeout bounds the pair of analyzer calls.
	DefaultAnalyzerTimeout = 5 * time.Second

	negativeSignalFloor   = 0.3
	negativeSignalWeight  = 30.0
	neutralSignalFloor    = 0.5
	neutralSignalWeight   = 20.0
	technicalPhraseWeight = 25.0
	phraseConfidenceFloor = 0.8
	phraseConfidenceBonus = 15.0
	localQuestionBonus    = 10.0

	maxHybridConfidence = 0.99
	fallbackConfidence  = 0.3

	// FallbackReason is reported when the semantic analyzer could not be used.
	FallbackReason = "external validation failed, using local classification"
	noSignalReason = "no clear semantic indicators"
)

// Analyzer provides sentiment and key phrases for a text. Implementations
// must honor context cancellation.
type Analyzer interface {
	Sentiment(ctx context.Context, text, language string) (SentimentScores, error)
	KeyPhrases(ctx context.Context, text, language string) ([]KeyPhrase, error)
}

// SentimentScores are sentiment probabilities in [0, 1].
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Mixed    float64 `json:"mixed"`
}

// KeyPhrase is a phrase extracted by the analyzer with its confidence in [0, 1].
type KeyPhrase struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Signal is the combined analyzer output for one message.
type Signal struct {
	Sentiment  SentimentScores `json:"sentiment"`
	KeyPhrases []KeyPhrase     `json:"key_phrases"`
}

// Validate rejects probabilities outside [0, 1].
func (s Signal) Validate() error {
	scores := map[string]float64{
		"positive": s.Sentiment.Positive,
		"negative": s.Sentiment.Negative,
		"neutral":  s.Sentiment.Neutral,
		"mixed":    s.Sentiment.Mixed,
	}
	for name, v := range scores {
		if !isProbability(v) {
			return fmt.Errorf("%w: sentiment %s = %v", ErrInvalidSignal, name, v)
		}
	}
	for _, p := range s.KeyPhrases {
		if !isProbability(p.Confidence) {
			return fmt.Errorf("%w: key phrase %q confidence = %v", ErrInvalidSignal, p.Text, p.Confidence)
		}
	}
	return nil
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// HybridDebug exposes the inputs behind a HybridResult.
type HybridDebug struct {
	Sentiment           *SentimentScores `json:"sentiment,omitempty"`
	KeyPhrases          []KeyPhrase      `json:"key_phrases,omitempty"`
	TechnicalPhrases    []string         `json:"technical_phrases,omitempty"`
	AvgPhraseConfidence float64          `json:"avg_phrase_confidence"`
	LocalLabel          Label            `json:"local_label"`
	Error               string           `json:"error,omitempty"`
}

// HybridResult is the final label after semantic validation.
type HybridResult struct {
	Label      Label                `json:"label"`
	Confidence float64              `json:"confidence"`
	AIScore    float64              `json:"ai_score"`
	Reason     string               `json:"reason"`
	Fallback   bool                 `json:"fallback"`
	Local      ClassificationResult `json:"local"`
	Debug      HybridDebug          `json:"debug"`
}

// Validator confirms or overrides a lexical result using an Analyzer.
type Validator struct {
	analyzer  Analyzer
	lexicon   *Lexicon
	logger    *slog.Logger
	threshold float64
	language  string
	timeout   time.Duration
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithSemanticThreshold overrides the aiScore decision threshold.
func WithSemanticThreshold(t float64) ValidatorOption {
	return func(v *Validator) {
		v.threshold = t
	}
}

// WithLanguage sets the language code passed to the analyzer.
func WithLanguage(lang string) ValidatorOption {
	return func(v *Validator) {
		if lang != "" {
			v.language = lang
		}
	}
}

// WithTimeout bounds the analyzer calls. Zero disables the bound.
func WithTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		v.timeout = d
	}
}

// NewValidator creates a Validator. A nil analyzer makes every validation
// take the fallback path.
func NewValidator(analyzer Analyzer, lexicon *Lexicon, logger *slog.Logger, opts ...ValidatorOption) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{
		analyzer:  analyzer,
		lexicon:   lexicon,
		logger:    logger.With("system", "validator"),
		threshold: DefaultSemanticThreshold,
		language:  DefaultLanguage,
		timeout:   DefaultAnalyzerTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate computes the hybrid label for text given its local result.
// Analyzer failures never surface as errors: the local label is kept with
// reduced confidence and Fallback set.
func (v *Validator) Validate(ctx context.Context, text string, local ClassificationResult) HybridResult {
	signal, err := v.analyze(ctx, text)
	if err != nil {
		v.logger.Warn("semantic validation fallback", "error", err, "local_label", local.Label)
		return fallback(local, err)
	}
	return v.score(signal, local)
}

func (v *Validator) analyze(ctx context.Context, text string) (Signal, error) {
	if v.analyzer == nil {
		return Signal{}, ErrAnalyzerUnavailable
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	var signal Signal
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := v.analyzer.Sentiment(gctx, text, v.language)
		if err != nil {
			return fmt.Errorf("sentiment: %w", err)
		}
		signal.Sentiment = s
		return nil
	})

	g.Go(func() error {
		p, err := v.analyzer.KeyPhrases(gctx, text, v.language)
		if err != nil {
			return fmt.Errorf("key phrases: %w", err)
		}
		signal.KeyPhrases = p
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Signal{}, fmt.Errorf("analyzer timeout: %w", err)
		}
		return Signal{}, err
	}

	if err := signal.Validate(); err != nil {
		return Signal{}, err
	}
	return signal, nil
}

func (v *Validator) score(signal Signal, local ClassificationResult) HybridResult {
	var (
		aiScore float64
		reasons []string
	)

	s := signal.Sentiment
	if s.Negative > negativeSignalFloor {
		aiScore += s.Negative * negativeSignalWeight
		reasons = append(reasons, fmt.Sprintf("negative sentiment (%.0f%%)", s.Negative*100))
	}
	if s.Neutral > neutralSignalFloor {
		aiScore += s.Neutral * neutralSignalWeight
		reasons = append(reasons, "neutral tone typical of technical questions")
	}

	technical := v.technicalPhrases(signal.KeyPhrases)
	if len(technical) > 0 {
		aiScore += float64(len(technical)) * technicalPhraseWeight
		reasons = append(reasons, fmt.Sprintf("%d technical key phrase(s)", len(technical)))
	}

	avg := meanConfidence(signal.KeyPhrases)
	if avg > phraseConfidenceFloor {
		aiScore += phraseConfidenceBonus
		reasons = append(reasons, "high confidence key phrases")
	}

	if local.Label == LabelDuvida {
		aiScore += localQuestionBonus
		reasons = append(reasons, "local rules indicate a question")
	}

	label := LabelInteracao
	if aiScore >= v.threshold {
		label = LabelDuvida
	}

	confidence := math.Min(0.5+math.Abs(aiScore-v.threshold)/100, maxHybridConfidence)

	reason := noSignalReason
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	if label != local.Label {
		reason += fmt.Sprintf("; overrides local %s", local.Label)
	}

	return HybridResult{
		Label:      label,
		Confidence: round2(confidence),
		AIScore:    round2(aiScore),
		Reason:     reason,
		Local:      local,
		Debug: HybridDebug{
			Sentiment:           &s,
			KeyPhrases:          signal.KeyPhrases,
			TechnicalPhrases:    technical,
			AvgPhraseConfidence: round2(avg),
			LocalLabel:          local.Label,
		},
	}
}

func (v *Validator) technicalPhrases(phrases []KeyPhrase) []string {
	var out []string
	for _, p := range phrases {
		if v.lexicon.phraseTechnical.matches(Normalize(p.Text).Words) {
			out = append(out, p.Text)
		}
	}
	return out
}

func meanConfidence(phrases []KeyPhrase) float64 {
	if len(phrases) == 0 {
		return 0
	}
	var sum float64
	for _, p := range phrases {
		sum += p.Confidence
	}
	return sum / float64(len(phrases))
}

func fallback(local ClassificationResult, err error) HybridResult {
	return HybridResult{
		Label:      local.Label,
		Confidence: fallbackConfidence,
		AIScore:    0,
		Reason:     FallbackReason,
		Fallback:   true,
		Local:      local,
		Debug: HybridDebug{
			LocalLabel: local.Label,
			Error:      err.Error(),
		},
	}
}
