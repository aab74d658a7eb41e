package triage

import (
	"fmt"
	"math"
	"strings"
)

// Lexical scoring weights.
const (
	weightQuestionMark  = 3.0
	weightInterrogative = 2.5
	weightTechnical     = 2.0
	weightSocial        = -3.0
	weightNegative      = 1.5
	weightLength        = 0.5
	weightCombination   = 1.0

	minLengthTokens = 3
	minClearWords   = 3

	// DefaultLexicalThreshold is the score at or above which a message is a question.
	DefaultLexicalThreshold = 2.0

	maxLexicalConfidence = 95
)

// Sentiment is the coarse lexical sentiment tag.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// Analysis carries the lexical features computed for a message.
type Analysis struct {
	InterrogativeCount int       `json:"interrogative_count"`
	TechnicalCount     int       `json:"technical_count"`
	SocialCount        int       `json:"social_count"`
	NegativeCount      int       `json:"negative_count"`
	HasQuestionMark    bool      `json:"has_question_mark"`
	WordCount          int       `json:"word_count"`
	MessageLength      int       `json:"message_length"`
	Sentiment          Sentiment `json:"sentiment"`
	Vague              bool      `json:"vague"`
}

// ClassificationResult is the output of the lexical classifier.
type ClassificationResult struct {
	Label      Label    `json:"label"`
	Score      float64  `json:"score"`
	Confidence int      `json:"confidence"`
	Reason     string   `json:"reason"`
	Analysis   Analysis `json:"analysis"`
}

// Classifier assigns a lexical label to message text. It is safe for
// concurrent use.
type Classifier struct {
	lexicon   *Lexicon
	threshold float64
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithThreshold overrides the lexical decision threshold.
func WithThreshold(t float64) ClassifierOption {
	return func(c *Classifier) {
		c.threshold = t
	}
}

// NewClassifier creates a Classifier over the compiled lexicon.
func NewClassifier(lexicon *Lexicon, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		lexicon:   lexicon,
		threshold: DefaultLexicalThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured decision threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify scores text and assigns a label. The result is a pure function of
// the text, the lexicon and the threshold.
func (c *Classifier) Classify(text string) ClassificationResult {
	ts := Normalize(text)
	a := c.analyze(text, ts)

	score := 0.0
	if a.HasQuestionMark {
		score += weightQuestionMark
	}
	score += float64(a.InterrogativeCount) * weightInterrogative
	score += float64(a.TechnicalCount) * weightTechnical
	score += float64(a.SocialCount) * weightSocial
	score += float64(a.NegativeCount) * weightNegative
	if len(ts.Tokens) >= minLengthTokens {
		score += weightLength
	}
	if a.TechnicalCount > 0 && a.InterrogativeCount > 0 {
		score += weightCombination
	}

	label := LabelInteracao
	if score >= c.threshold {
		label = LabelDuvida
	}

	return ClassificationResult{
		Label:      label,
		Score:      round2(score),
		Confidence: lexicalConfidence(score, c.threshold),
		Reason:     lexicalReason(label, a),
		Analysis:   a,
	}
}

// ClassifyBatch classifies each text independently, preserving order.
func (c *Classifier) ClassifyBatch(texts []string) []ClassificationResult {
	results := make([]ClassificationResult, len(texts))
	for i, t := range texts {
		results[i] = c.Classify(t)
	}
	return results
}

func (c *Classifier) analyze(text string, ts TokenSet) Analysis {
	l := c.lexicon
	a := Analysis{
		InterrogativeCount: l.interrogative.count(ts.Words),
		TechnicalCount:     l.technical.count(ts.Words),
		SocialCount:        l.social.count(ts.Words),
		NegativeCount:      l.negative.count(ts.Words),
		HasQuestionMark:    ts.HasQuestionMark,
		WordCount:          len(ts.Tokens),
		MessageLength:      len([]rune(text)),
	}

	pos := l.positiveSentiment.count(ts.Words)
	neg := l.negativeSentiment.count(ts.Words)
	switch {
	case pos > neg:
		a.Sentiment = SentimentPositive
	case neg > pos:
		a.Sentiment = SentimentNegative
	default:
		a.Sentiment = SentimentNeutral
	}

	a.Vague = l.IsVaguePhrase(ts.Words) ||
		(a.TechnicalCount == 0 && len(ts.Words) < minClearWords)

	return a
}

func lexicalConfidence(score, threshold float64) int {
	c := math.Min(50+math.Abs(score-threshold)*10, maxLexicalConfidence)
	return int(math.Round(c))
}

func lexicalReason(label Label, a Analysis) string {
	var factors []string
	if a.HasQuestionMark {
		factors = append(factors, "contains question mark")
	}
	if a.InterrogativeCount > 0 {
		factors = append(factors, fmt.Sprintf("%d interrogative word(s)", a.InterrogativeCount))
	}
	if a.TechnicalCount > 0 {
		factors = append(factors, fmt.Sprintf("%d technical term(s)", a.TechnicalCount))
	}
	if a.SocialCount > 0 {
		factors = append(factors, fmt.Sprintf("%d social term(s)", a.SocialCount))
	}
	if a.Sentiment == SentimentNegative {
		factors = append(factors, "negative sentiment or confusion")
	}

	if len(factors) == 0 {
		return fmt.Sprintf("%s detected: general contextual analysis", label)
	}
	return fmt.Sprintf("%s detected: %s", label, strings.Join(factors, ", "))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
