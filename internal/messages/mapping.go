package messages

import (
	"net/url"
	"strings"
	"time"

	"github.com/smartclass/triage/internal/triage"
	"github.com/smartclass/triage/pkg/query"
	"github.com/smartclass/triage/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "messages", "m").
	Project("id", "ID").
	Project("text", "Text").
	Project("author_id", "AuthorID").
	Project("submitted_at", "SubmittedAt").
	Project("label", "Label").
	Project("local_label", "LocalLabel").
	Project("score", "Score").
	Project("confidence", "Confidence").
	Project("ai_score", "AIScore").
	Project("reason", "Reason").
	Project("sentiment", "Sentiment").
	Project("fallback", "Fallback").
	Project("status", "Status").
	Project("answered_at", "AnsweredAt").
	Project("corrected_label", "CorrectedLabel").
	Project("audit_key", "AuditKey")

const returning = `RETURNING id, text, author_id, submitted_at, label, local_label,
		score, confidence, ai_score, reason, sentiment, fallback,
		status, answered_at, corrected_label, audit_key`

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for message queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Status         *string `json:"status,omitempty"`
	Author         *string `json:"author,omitempty"`
	CorrectedLabel *string `json:"corrected_label,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("AuthorID", f.Author).
		WhereEquals("CorrectedLabel", f.CorrectedLabel)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// The status value "all" is treated as no filter.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := strings.ToLower(values.Get("status")); s != "" && s != "all" {
		f.Status = &s
	}

	if a := values.Get("author"); a != "" {
		f.Author = &a
	}

	if l := strings.ToUpper(values.Get("corrected_label")); l != "" {
		f.CorrectedLabel = &l
	}

	return f
}

// WindowFromQuery parses the from and to parameters as RFC 3339 timestamps
// or YYYY-MM-DD dates. A date in to is inclusive of that whole day.
func WindowFromQuery(values url.Values) (Window, error) {
	var w Window

	if v := values.Get("from"); v != "" {
		t, err := parseBound(v, false)
		if err != nil {
			return w, err
		}
		w.From = &t
	}

	if v := values.Get("to"); v != "" {
		t, err := parseBound(v, true)
		if err != nil {
			return w, err
		}
		w.To = &t
	}

	if w.From != nil && w.To != nil && !w.From.Before(*w.To) {
		return w, ErrInvalidWindow
	}

	return w, nil
}

func parseBound(v string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, ErrInvalidWindow
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func scanMessage(s repository.Scanner) (Message, error) {
	var m Message
	err := s.Scan(
		&m.ID,
		&m.Text,
		&m.AuthorID,
		&m.SubmittedAt,
		&m.Label,
		&m.LocalLabel,
		&m.Score,
		&m.Confidence,
		&m.AIScore,
		&m.Reason,
		&m.Sentiment,
		&m.Fallback,
		&m.Status,
		&m.AnsweredAt,
		&m.CorrectedLabel,
		&m.AuditKey,
	)
	return m, err
}

func scanCorrection(s repository.Scanner) (Correction, error) {
	var c Correction
	var previous *string

	err := s.Scan(
		&c.ID,
		&c.MessageID,
		&c.Timestamp,
		&c.Label,
		&previous,
		&c.CorrectedBy,
		&c.CreatedAt,
	)
	if previous != nil {
		c.PreviousLabel = triage.Label(*previous)
	}
	return c, err
}
