// Package messages implements the stored question domain. It runs submitted
// messages through the triage engine, persists accepted questions, notifies
// the instructor, archives audit payloads and records human corrections.
package messages

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/triage"
)

// Status tracks whether the instructor has answered a stored question.
type Status string

const (
	StatusUnanswered Status = "unanswered"
	StatusAnswered   Status = "answered"
)

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusUnanswered:
		return StatusUnanswered, nil
	case StatusAnswered:
		return StatusAnswered, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Message is an accepted question as stored in the messages table.
// Label is the hybrid label; LocalLabel is the lexical classifier's verdict.
type Message struct {
	ID             uuid.UUID  `json:"id"`
	Text           string     `json:"text"`
	AuthorID       string     `json:"author_id"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Label          string     `json:"label"`
	LocalLabel     string     `json:"local_label"`
	Score          float64    `json:"score"`
	Confidence     float64    `json:"confidence"`
	AIScore        float64    `json:"ai_score"`
	Reason         string     `json:"reason"`
	Sentiment      string     `json:"sentiment"`
	Fallback       bool       `json:"fallback"`
	Status         Status     `json:"status"`
	AnsweredAt     *time.Time `json:"answered_at"`
	CorrectedLabel *string    `json:"corrected_label"`
	AuditKey       *string    `json:"audit_key"`
}

// SubmitCommand carries a new classroom message.
type SubmitCommand struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Validate reports every problem with the command at once.
func (c SubmitCommand) Validate() error {
	var problems []string

	switch {
	case c.Text == "":
		problems = append(problems, "text is required")
	case strings.TrimSpace(c.Text) == "":
		problems = append(problems, "text must not be blank")
	}

	if utf8.RuneCountInString(c.Text) > triage.MaxMessageLength {
		problems = append(problems, fmt.Sprintf("text must be at most %d characters", triage.MaxMessageLength))
	}

	if utf8.RuneCountInString(c.Author) > maxAuthorLength {
		problems = append(problems, fmt.Sprintf("author must be at most %d characters", maxAuthorLength))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

const maxAuthorLength = 100

// StatusCommand marks a question answered or reopens it.
type StatusCommand struct {
	Status string `json:"status"`
}

// CorrectionCommand overrides a stored message's label. Timestamp must equal
// the message's submitted_at.
type CorrectionCommand struct {
	Timestamp   time.Time `json:"timestamp"`
	Label       string    `json:"label"`
	CorrectedBy string    `json:"corrected_by"`
}

// Correction is a persisted label override.
type Correction struct {
	ID uuid.UUID `json:"id"`
	triage.Correction
	CreatedAt time.Time `json:"created_at"`
}

// SubmitResult is returned for every triage outcome. Notices lists
// best-effort side effects that failed after classification succeeded.
type SubmitResult struct {
	Outcome        triage.Outcome `json:"outcome"`
	MessageID      *uuid.UUID     `json:"message_id,omitempty"`
	Classification triage.Label   `json:"classification"`
	Confidence     float64        `json:"confidence"`
	AIScore        float64        `json:"ai_score"`
	Reason         string         `json:"reason"`
	Message        string         `json:"message"`
	Notices        []string       `json:"notices,omitempty"`
	Trace          *triage.Result `json:"trace,omitempty"`
}

// Reply texts shown to the author.
const (
	ReplyAccepted = "Question registered. The professor will be notified."
	ReplyIgnored  = "Message received as class interaction."
)

func newSubmitResult(r triage.Result) *SubmitResult {
	out := &SubmitResult{
		Outcome:        r.Decision.Outcome,
		Classification: r.Hybrid.Label,
		Confidence:     r.Hybrid.Confidence,
		AIScore:        r.Hybrid.AIScore,
		Reason:         r.Hybrid.Reason,
	}

	switch r.Decision.Outcome {
	case triage.OutcomeAccepted:
		out.Message = ReplyAccepted
	case triage.OutcomeRejectedVague:
		out.Message = r.Decision.Instruction
	default:
		out.Message = ReplyIgnored
	}

	return out
}

// AuditRecord is the archived trace of an accepted message.
type AuditRecord struct {
	MessageID  uuid.UUID     `json:"message_id"`
	Result     triage.Result `json:"result"`
	ArchivedAt time.Time     `json:"archived_at"`
}

// AuditKey returns the blob key for a message's audit record.
func AuditKey(id uuid.UUID, submittedAt time.Time) string {
	return fmt.Sprintf("audit/%s/%s.json", submittedAt.UTC().Format("2006/01/02"), id)
}

// Stats aggregates stored questions.
type Stats struct {
	Questions     int     `json:"questions"`
	Answered      int     `json:"answered"`
	Unanswered    int     `json:"unanswered"`
	Corrected     int     `json:"corrected"`
	AvgConfidence float64 `json:"avg_confidence"`
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
}

// Summary converts the stats into the daily summary notification for date.
func (s Stats) Summary(date time.Time) notify.Summary {
	return notify.Summary{
		Date:       date,
		Questions:  s.Questions,
		Answered:   s.Answered,
		Unanswered: s.Unanswered,
		Corrected:  s.Corrected,
	}
}

// Window bounds a stats query by submission time. Nil bounds are open.
type Window struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Day returns the window covering the UTC calendar day containing t.
func Day(t time.Time) Window {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return Window{From: &from, To: &to}
}
