package triage

import (
	"context"
	"log/slog"
	"time"
)

// Config assembles an Engine.
type Config struct {
	Vocabulary        Vocabulary
	LexicalThreshold  float64
	SemanticThreshold float64
	MinMessageLength  int
	Language          string
	Timeout           time.Duration
}

// Result is the full trace of one message through the pipeline.
type Result struct {
	Message  Message              `json:"message"`
	Local    ClassificationResult `json:"local"`
	Hybrid   HybridResult         `json:"hybrid"`
	Decision Decision             `json:"decision"`
}

// Engine runs Classify, Validate and Route in order.
type Engine struct {
	classifier *Classifier
	validator  *Validator
	router     *Router
}

// New compiles cfg.Vocabulary and builds an Engine. The analyzer may be nil.
func New(cfg Config, analyzer Analyzer, logger *slog.Logger) (*Engine, error) {
	lexicon, err := cfg.Vocabulary.Compile()
	if err != nil {
		return nil, err
	}

	var copts []ClassifierOption
	if cfg.LexicalThreshold != 0 {
		copts = append(copts, WithThreshold(cfg.LexicalThreshold))
	}

	vopts := []ValidatorOption{WithLanguage(cfg.Language)}
	if cfg.SemanticThreshold != 0 {
		vopts = append(vopts, WithSemanticThreshold(cfg.SemanticThreshold))
	}
	if cfg.Timeout > 0 {
		vopts = append(vopts, WithTimeout(cfg.Timeout))
	}

	return NewEngine(
		NewClassifier(lexicon, copts...),
		NewValidator(analyzer, lexicon, logger, vopts...),
		NewRouter(cfg.MinMessageLength),
	), nil
}

// NewEngine composes pre-built stages.
func NewEngine(classifier *Classifier, validator *Validator, router *Router) *Engine {
	return &Engine{
		classifier: classifier,
		validator:  validator,
		router:     router,
	}
}

// Classifier returns the lexical classifier.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Triage runs the message through the full pipeline. It never fails:
// analyzer errors degrade to the fallback result.
func (e *Engine) Triage(ctx context.Context, msg Message) Result {
	local := e.classifier.Classify(msg.Text)
	hybrid := e.validator.Validate(ctx, msg.Text, local)
	decision := e.router.Route(msg, hybrid)

	return Result{
		Message:  msg,
		Local:    local,
		Hybrid:   hybrid,
		Decision: decision,
	}
}
