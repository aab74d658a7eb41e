package notify

import (
	"fmt"
	"strings"
)

const (
	questionSubject = "New question detected - Smart Class Q&A"
	summarySubject  = "Daily summary - Smart Class Q&A"

	timeLayout = "02/01/2006 15:04:05"
	dateLayout = "02/01/2006"
	rule       = "-------------------------------------------------------"
)

// FormatQuestion renders the plain-text e-mail for a new question.
func FormatQuestion(e QuestionEvent, dashboardURL string) (subject, body string) {
	var b strings.Builder

	b.WriteString("SMART CLASS Q&A - NEW QUESTION\n\n")
	fmt.Fprintf(&b, "Date/time: %s\n", e.Timestamp.Format(timeLayout))
	fmt.Fprintf(&b, "Student: %s\n", e.Author)
	fmt.Fprintf(&b, "Classifier confidence: %d%%\n\n", e.Confidence)
	b.WriteString("QUESTION:\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", e.Text)
	b.WriteString(rule + "\n\n")
	b.WriteString("Open the instructor dashboard to answer:\n")
	fmt.Fprintf(&b, "   %s\n\n", dashboardURL)
	b.WriteString(rule + "\n\n")
	b.WriteString("This is an automatic message from Smart Class Q&A.")

	return questionSubject, b.String()
}

// FormatSummary renders the plain-text daily summary.
func FormatSummary(s Summary, dashboardURL string) (subject, body string) {
	var b strings.Builder

	b.WriteString("SMART CLASS Q&A - DAILY SUMMARY\n\n")
	fmt.Fprintf(&b, "Date: %s\n\n", s.Date.Format(dateLayout))
	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "   Questions: %d\n", s.Questions)
	fmt.Fprintf(&b, "   Answered: %d\n", s.Answered)
	fmt.Fprintf(&b, "   Unanswered: %d\n", s.Unanswered)
	fmt.Fprintf(&b, "   Corrected labels: %d\n\n", s.Corrected)
	fmt.Fprintf(&b, "RESPONSE RATE: %d%%\n\n", s.ResponseRate())

	if s.Unanswered > 0 {
		fmt.Fprintf(&b, "ATTENTION: %d question(s) still waiting for an answer.\n\n", s.Unanswered)
	} else {
		b.WriteString("All questions have been answered.\n\n")
	}

	b.WriteString(rule + "\n\n")
	b.WriteString("Open the instructor dashboard:\n")
	fmt.Fprintf(&b, "   %s", dashboardURL)

	return summarySubject, b.String()
}
