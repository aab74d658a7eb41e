package semantic

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider = errors.New("unknown semantic provider")
	ErrMissingAPIKey   = errors.New("openai api_key required")
)

// ErrUnavailable indicates the analyzer backend could not be reached or
// rejected the request.
type ErrUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s analyzer unavailable: %v", e.Provider, e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the analyzer answered with content that does
// not match the expected shape.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid analyzer response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
