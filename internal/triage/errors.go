package triage

import "errors"

var (
	ErrEmptyText           = errors.New("message text is empty")
	ErrInvalidLabel        = errors.New("invalid classification label")
	ErrEmptyVocabulary     = errors.New("vocabulary set is empty")
	ErrAnalyzerUnavailable = errors.New("semantic analyzer not configured")
	ErrInvalidSignal       = errors.New("invalid semantic signal")
	ErrInvalidCorrection   = errors.New("invalid correction")
)
