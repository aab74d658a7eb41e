package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Correction is a human override of a stored message's label. It never
// alters the classifier.
type Correction struct {
	MessageID     uuid.UUID `json:"message_id"`
	Timestamp     time.Time `json:"timestamp"`
	Label         Label     `json:"label"`
	CorrectedBy   string    `json:"corrected_by"`
	PreviousLabel Label     `json:"previous_label,omitempty"`
}

// NewCorrection validates and builds a Correction. The message is addressed
// by its id together with its submission timestamp.
func NewCorrection(messageID uuid.UUID, timestamp time.Time, label, correctedBy string) (Correction, error) {
	if messageID == uuid.Nil {
		return Correction{}, fmt.Errorf("%w: message id is required", ErrInvalidCorrection)
	}
	if timestamp.IsZero() {
		return Correction{}, fmt.Errorf("%w: timestamp is required", ErrInvalidCorrection)
	}

	l, err := ParseLabel(label)
	if err != nil {
		return Correction{}, fmt.Errorf("%w: %w", ErrInvalidCorrection, err)
	}

	correctedBy = strings.TrimSpace(correctedBy)
	if correctedBy == "" {
		correctedBy = AnonymousAuthor
	}

	return Correction{
		MessageID:   messageID,
		Timestamp:   timestamp,
		Label:       l,
		CorrectedBy: correctedBy,
	}, nil
}
