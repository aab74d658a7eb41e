package messages_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartclass/triage/internal/messages"
	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/triage"
	"github.com/smartclass/triage/pkg/database"
	"github.com/smartclass/triage/pkg/lifecycle"
	"github.com/smartclass/triage/pkg/pagination"
	"github.com/smartclass/triage/pkg/query"
	"github.com/smartclass/triage/pkg/storage"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeNotifier struct {
	events []notify.QuestionEvent
	err    error
}

func (n *fakeNotifier) NewQuestion(_ context.Context, e notify.QuestionEvent) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, e)
	return nil
}

func (n *fakeNotifier) DailySummary(context.Context, notify.Summary) error { return nil }
func (n *fakeNotifier) Close() error                                       { return nil }

type fakeStore struct {
	uploads []string
}

func (s *fakeStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *fakeStore) Upload(_ context.Context, key string, _ io.Reader, _ string) error {
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *fakeStore) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) Delete(context.Context, string) error        { return nil }
func (s *fakeStore) Exists(context.Context, string) (bool, error) { return false, nil }

var fixedNow = time.Date(2026, 3, 10, 19, 30, 5, 123456789, time.UTC)

func newSystem(t *testing.T, n notify.System, store storage.System) messages.System {
	t.Helper()

	engine, err := triage.New(triage.Config{Vocabulary: triage.DefaultVocabulary()}, nil, discardLogger())
	if err != nil {
		t.Fatalf("triage.New: %v", err)
	}

	return messages.New(nil, engine, n, store, discardLogger(),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		messages.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", messages.ErrNotFound, http.StatusNotFound},
		{"duplicate", messages.ErrDuplicate, http.StatusConflict},
		{"validation", messages.ErrValidation, http.StatusBadRequest},
		{"invalid status", messages.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid window", messages.ErrInvalidWindow, http.StatusBadRequest},
		{"database not ready", database.ErrNotReady, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", messages.ErrNotFound), http.StatusNotFound},
		{"wrapped validation", fmt.Errorf("submit: %w", messages.ErrValidation), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messages.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSubmitCommandValidate(t *testing.T) {
	tests := []struct {
		name     string
		cmd      messages.SubmitCommand
		problems []string
	}{
		{"valid", messages.SubmitCommand{Text: "Como crio um bucket?", Author: "aluno"}, nil},
		{"anonymous is valid", messages.SubmitCommand{Text: "Como crio um bucket?"}, nil},
		{"missing text", messages.SubmitCommand{}, []string{"text is required"}},
		{"blank text", messages.SubmitCommand{Text: "  \n\t"}, []string{"text must not be blank"}},
		{
			"every problem reported",
			messages.SubmitCommand{Text: strings.Repeat("á", 1001), Author: strings.Repeat("x", 101)},
			[]string{"at most 1000 characters", "author must be at most 100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if len(tt.problems) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, messages.ErrValidation) {
				t.Fatalf("Validate() = %v, want ErrValidation", err)
			}
			for _, p := range tt.problems {
				if !strings.Contains(err.Error(), p) {
					t.Errorf("error %q missing %q", err, p)
				}
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := messages.ParseStatus(" Answered "); err != nil || s != messages.StatusAnswered {
		t.Errorf("ParseStatus(Answered) = %q, %v", s, err)
	}
	if s, err := messages.ParseStatus("unanswered"); err != nil || s != messages.StatusUnanswered {
		t.Errorf("ParseStatus(unanswered) = %q, %v", s, err)
	}
	if _, err := messages.ParseStatus("pending"); !errors.Is(err, messages.ErrInvalidStatus) {
		t.Errorf("ParseStatus(pending) error = %v, want ErrInvalidStatus", err)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		f := messages.FiltersFromQuery(url.Values{
			"status":          {"Answered"},
			"author":          {"aluno-7"},
			"corrected_label": {"interacao"},
		})

		if f.Status == nil || *f.Status != "answered" {
			t.Errorf("Status = %v, want answered", f.Status)
		}
		if f.Author == nil || *f.Author != "aluno-7" {
			t.Errorf("Author = %v, want aluno-7", f.Author)
		}
		if f.CorrectedLabel == nil || *f.CorrectedLabel != "INTERACAO" {
			t.Errorf("CorrectedLabel = %v, want INTERACAO", f.CorrectedLabel)
		}
	})

	t.Run("status all is no filter", func(t *testing.T) {
		f := messages.FiltersFromQuery(url.Values{"status": {"all"}})
		if f.Status != nil {
			t.Errorf("Status = %v, want nil", *f.Status)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := messages.FiltersFromQuery(url.Values{})
		if f.Status != nil || f.Author != nil || f.CorrectedLabel != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	proj := query.
		NewProjectionMap("public", "messages", "m").
		Project("id", "ID").
		Project("status", "Status").
		Project("author_id", "AuthorID").
		Project("corrected_label", "CorrectedLabel")

	f := messages.Filters{Status: ptr("unanswered"), Author: ptr("aluno")}
	sql, args := f.Apply(query.NewBuilder(proj)).BuildCount()

	want := "SELECT COUNT(*) FROM public.messages m WHERE m.status = $1 AND m.author_id = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want 2", args)
	}
	if s, ok := args[0].(*string); !ok || *s != "unanswered" {
		t.Errorf("args[0] = %v, want unanswered", args[0])
	}
}

func TestWindowFromQuery(t *testing.T) {
	t.Run("dates", func(t *testing.T) {
		w, err := messages.WindowFromQuery(url.Values{"from": {"2026-03-10"}, "to": {"2026-03-10"}})
		if err != nil {
			t.Fatalf("WindowFromQuery error: %v", err)
		}
		if !w.From.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("From = %v", w.From)
		}
		if !w.To.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("To = %v, want inclusive end of day", w.To)
		}
	})

	t.Run("rfc3339", func(t *testing.T) {
		w, err := messages.WindowFromQuery(url.Values{"from": {"2026-03-10T12:00:00Z"}})
		if err != nil {
			t.Fatalf("WindowFromQuery error: %v", err)
		}
		if w.To != nil {
			t.Errorf("To = %v, want nil", w.To)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, v := range []url.Values{
			{"from": {"yesterday"}},
			{"from": {"2026-03-12"}, "to": {"2026-03-10"}},
		} {
			if _, err := messages.WindowFromQuery(v); !errors.Is(err, messages.ErrInvalidWindow) {
				t.Errorf("WindowFromQuery(%v) error = %v, want ErrInvalidWindow", v, err)
			}
		}
	})
}

func TestDay(t *testing.T) {
	w := messages.Day(fixedNow)
	if !w.From.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) || w.To.Sub(*w.From) != 24*time.Hour {
		t.Errorf("Day() = %v .. %v", w.From, w.To)
	}
}

func TestAuditKey(t *testing.T) {
	id := uuid.MustParse("7b0f4b2e-3c57-4f6a-9d1e-2a9c1f3e5d11")
	want := "audit/2026/03/10/7b0f4b2e-3c57-4f6a-9d1e-2a9c1f3e5d11.json"
	if got := messages.AuditKey(id, fixedNow); got != want {
		t.Errorf("AuditKey() = %q, want %q", got, want)
	}
}

func TestStatsSummary(t *testing.T) {
	s := messages.Stats{Questions: 4, Answered: 3, Unanswered: 1, Corrected: 1}
	sum := s.Summary(fixedNow)

	if sum.Questions != 4 || sum.Answered != 3 || sum.Unanswered != 1 || sum.Corrected != 1 {
		t.Errorf("Summary() = %+v", sum)
	}
	if sum.ResponseRate() != 75 {
		t.Errorf("ResponseRate() = %d, want 75", sum.ResponseRate())
	}
}

func TestSubmit(t *testing.T) {
	t.Run("accepted question without database", func(t *testing.T) {
		n := &fakeNotifier{}
		store := &fakeStore{}
		sys := newSystem(t, n, store)

		res, err := sys.Submit(context.Background(), messages.SubmitCommand{
			Text:   "Qual o comando do lab para criar a função lambda?",
			Author: "aluno-7",
		})
		if err != nil {
			t.Fatalf("Submit error: %v", err)
		}

		if res.Outcome != triage.OutcomeAccepted {
			t.Fatalf("Outcome = %s, want ACCEPTED", res.Outcome)
		}
		if res.Message != messages.ReplyAccepted {
			t.Errorf("Message = %q", res.Message)
		}
		if res.MessageID != nil {
			t.Errorf("MessageID = %v, want nil when not stored", res.MessageID)
		}
		if len(res.Notices) != 1 || !strings.HasPrefix(res.Notices[0], "message not stored") {
			t.Errorf("Notices = %v, want one storage notice", res.Notices)
		}
		if res.Trace != nil {
			t.Error("Trace set on submit")
		}

		if len(n.events) != 1 {
			t.Fatalf("notifications = %d, want 1", len(n.events))
		}
		e := n.events[0]
		if e.Author != "aluno-7" || e.Confidence != 30 {
			t.Errorf("event = %+v, want author aluno-7 and fallback confidence 30", e)
		}
		if !e.Timestamp.Equal(fixedNow.Truncate(time.Microsecond)) {
			t.Errorf("Timestamp = %v", e.Timestamp)
		}

		if len(store.uploads) != 0 {
			t.Errorf("uploads = %v, want none for unstored message", store.uploads)
		}
	})

	t.Run("notify failure becomes notice", func(t *testing.T) {
		sys := newSystem(t, &fakeNotifier{err: notify.ErrDeliveryFailed}, nil)

		res, err := sys.Submit(context.Background(), messages.SubmitCommand{
			Text: "Qual o comando do lab para criar a função lambda?",
		})
		if err != nil {
			t.Fatalf("Submit error: %v", err)
		}
		if len(res.Notices) != 2 || !strings.HasPrefix(res.Notices[1], "instructor not notified") {
			t.Errorf("Notices = %v", res.Notices)
		}
	})

	t.Run("interaction is ignored", func(t *testing.T) {
		n := &fakeNotifier{}
		sys := newSystem(t, n, nil)

		res, err := sys.Submit(context.Background(), messages.SubmitCommand{Text: "Boa noite"})
		if err != nil {
			t.Fatalf("Submit error: %v", err)
		}
		if res.Outcome != triage.OutcomeIgnored || res.Classification != triage.LabelInteracao {
			t.Errorf("result = %+v, want IGNORED INTERACAO", res)
		}
		if len(res.Notices) != 0 || len(n.events) != 0 {
			t.Errorf("side effects on ignored message: notices=%v events=%d", res.Notices, len(n.events))
		}
	})

	t.Run("vague question is rejected", func(t *testing.T) {
		n := &fakeNotifier{}
		sys := newSystem(t, n, nil)

		res, err := sys.Submit(context.Background(), messages.SubmitCommand{Text: "Qual o kc?"})
		if err != nil {
			t.Fatalf("Submit error: %v", err)
		}
		if res.Outcome != triage.OutcomeRejectedVague {
			t.Errorf("Outcome = %s, want REJECTED_VAGUE", res.Outcome)
		}
		if res.Message != triage.VagueInstruction {
			t.Errorf("Message = %q", res.Message)
		}
		if len(n.events) != 0 {
			t.Error("vague question notified")
		}
	})

	t.Run("validation error", func(t *testing.T) {
		sys := newSystem(t, &fakeNotifier{}, nil)

		_, err := sys.Submit(context.Background(), messages.SubmitCommand{Text: "   "})
		if !errors.Is(err, messages.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("sanitized to nothing", func(t *testing.T) {
		sys := newSystem(t, &fakeNotifier{}, nil)

		_, err := sys.Submit(context.Background(), messages.SubmitCommand{Text: "<>"})
		if !errors.Is(err, messages.ErrValidation) || !errors.Is(err, triage.ErrEmptyText) {
			t.Errorf("error = %v, want ErrValidation wrapping ErrEmptyText", err)
		}
	})
}

func TestClassify(t *testing.T) {
	n := &fakeNotifier{}
	sys := newSystem(t, n, nil)

	res, err := sys.Classify(context.Background(), messages.SubmitCommand{
		Text: "Qual o comando do lab para criar a função lambda?",
	})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if res.Trace == nil {
		t.Fatal("Trace = nil, want full trace")
	}
	if res.Trace.Decision.Outcome != triage.OutcomeAccepted {
		t.Errorf("trace outcome = %s", res.Trace.Decision.Outcome)
	}
	if !res.Trace.Hybrid.Fallback {
		t.Error("Hybrid.Fallback = false without analyzer")
	}
	if res.MessageID != nil || len(res.Notices) != 0 || len(n.events) != 0 {
		t.Error("dry run produced side effects")
	}
}

func TestStoreOperationsWithoutDatabase(t *testing.T) {
	sys := newSystem(t, &fakeNotifier{}, nil)
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name string
		call func() error
	}{
		{"list", func() error {
			_, err := sys.List(ctx, pagination.PageRequest{}, messages.Filters{})
			return err
		}},
		{"find", func() error {
			_, err := sys.Find(ctx, id)
			return err
		}},
		{"stats", func() error {
			_, err := sys.Stats(ctx, messages.Window{})
			return err
		}},
		{"update status", func() error {
			_, err := sys.UpdateStatus(ctx, id, messages.StatusCommand{Status: "answered"})
			return err
		}},
		{"correct", func() error {
			_, err := sys.Correct(ctx, id, messages.CorrectionCommand{
				Timestamp:   fixedNow,
				Label:       "INTERACAO",
				CorrectedBy: "prof-1",
			})
			return err
		}},
		{"corrections", func() error {
			_, err := sys.Corrections(ctx, id)
			return err
		}},
		{"delete", func() error { return sys.Delete(ctx, id) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, database.ErrNotReady) {
				t.Errorf("error = %v, want database.ErrNotReady", err)
			}
		})
	}
}
