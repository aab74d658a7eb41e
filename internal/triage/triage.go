// Package triage implements the message triage engine: text normalization,
// the lexical classifier, the hybrid semantic validator, the decision router
// and the feedback correction directive. The engine holds no mutable state
// and is safe for concurrent use across unrelated messages.
package triage

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Label is the classification assigned to a message.
type Label string

const (
	// LabelDuvida marks a genuine question that requires an instructor's response.
	LabelDuvida Label = "DUVIDA"
	// LabelInteracao marks social or non-actionable interaction.
	LabelInteracao Label = "INTERACAO"
)

// ParseLabel converts s to a Label, accepting any letter case.
func ParseLabel(s string) (Label, error) {
	switch Label(strings.ToUpper(strings.TrimSpace(s))) {
	case LabelDuvida:
		return LabelDuvida, nil
	case LabelInteracao:
		return LabelInteracao, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLabel, s)
}

const (
	// MaxMessageLength is the maximum number of characters kept after sanitization.
	MaxMessageLength = 1000
	// AnonymousAuthor is assigned when a message is submitted without an author.
	AnonymousAuthor = "anonymous"
)

// Message is a single immutable submission.
type Message struct {
	Text        string    `json:"text"`
	AuthorID    string    `json:"author_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewMessage sanitizes text and builds a Message. Returns ErrEmptyText when
// nothing is left after sanitization.
func NewMessage(text, author string, submittedAt time.Time) (Message, error) {
	clean := Sanitize(text)
	if clean == "" {
		return Message{}, ErrEmptyText
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = AnonymousAuthor
	}

	return Message{
		Text:        clean,
		AuthorID:    author,
		SubmittedAt: submittedAt,
	}, nil
}

// Length returns the message length in characters.
func (m Message) Length() int {
	return utf8.RuneCountInString(m.Text)
}

// Sanitize trims text, removes angle brackets and caps it at MaxMessageLength characters.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.NewReplacer("<", "", ">", "").Replace(text)

	if utf8.RuneCountInString(text) > MaxMessageLength {
		text = string([]rune(text)[:MaxMessageLength])
	}

	return text
}
