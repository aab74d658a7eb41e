package messages

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/smartclass/triage/internal/notify"
	"github.com/smartclass/triage/internal/triage"
	"github.com/smartclass/triage/pkg/database"
	"github.com/smartclass/triage/pkg/pagination"
	"github.com/smartclass/triage/pkg/query"
	"github.com/smartclass/triage/pkg/repository"
	"github.com/smartclass/triage/pkg/storage"
)

type repo struct {
	db         *sql.DB
	engine     *triage.Engine
	notifier   notify.System
	store      storage.System
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// Option configures the message system.
type Option func(*repo)

// WithClock overrides the submission clock.
func WithClock(now func() time.Time) Option {
	return func(r *repo) { r.now = now }
}

// New creates a message repository implementing the System interface.
// The notifier and store are optional; a nil db turns persistence into a
// reported notice.
func New(
	db *sql.DB,
	engine *triage.Engine,
	notifier notify.System,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	opts ...Option,
) System {
	r := &repo{
		db:         db,
		engine:     engine,
		notifier:   notifier,
		store:      store,
		logger:     logger.With("system", "messages"),
		pagination: pagination,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBodySize)
}

func (r *repo) Classify(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	result, err := r.triage(ctx, cmd)
	if err != nil {
		return nil, err
	}

	out := newSubmitResult(result)
	out.Trace = &result
	return out, nil
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	result, err := r.triage(ctx, cmd)
	if err != nil {
		return nil, err
	}

	out := newSubmitResult(result)

	r.logger.Info("message triaged",
		"outcome", result.Decision.Outcome,
		"label", result.Hybrid.Label,
		"local_label", result.Local.Label,
		"confidence", result.Hybrid.Confidence,
		"fallback", result.Hybrid.Fallback,
	)

	if !result.Decision.Persist && !result.Decision.Notify {
		return out, nil
	}

	id := uuid.New()
	stored := false

	if result.Decision.Persist {
		if err := r.insert(ctx, id, result); err != nil {
			r.logger.Error("store message failed", "id", id, "error", err)
			out.Notices = append(out.Notices, fmt.Sprintf("message not stored: %v", err))
		} else {
			stored = true
			out.MessageID = &id
		}
	}

	if result.Decision.Notify {
		if err := r.notify(ctx, id, result); err != nil {
			r.logger.Error("notify failed", "id", id, "error", err)
			out.Notices = append(out.Notices, fmt.Sprintf("instructor not notified: %v", err))
		}
	}

	if stored && r.store != nil {
		if err := r.archive(ctx, id, result); err != nil {
			r.logger.Error("archive failed", "id", id, "error", err)
			out.Notices = append(out.Notices, fmt.Sprintf("audit record not archived: %v", err))
		}
	}

	return out, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Message], error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Text", "Reason", "AuthorID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Message, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMessage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &m, nil
}

func (r *repo) Stats(ctx context.Context, window Window) (*Stats, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	where, args := query.
		NewBuilder(projection).
		WhereRange("SubmittedAt", window.From, window.To).
		Where()

	statsQ := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE m.status = 'answered'),
			COUNT(*) FILTER (WHERE m.status = 'unanswered'),
			COUNT(*) FILTER (WHERE m.corrected_label IS NOT NULL),
			COALESCE(AVG(m.confidence), 0),
			COALESCE(MIN(m.confidence), 0),
			COALESCE(MAX(m.confidence), 0)
		FROM ` + projection.From() + where

	var s Stats
	err := r.db.QueryRowContext(ctx, statsQ, args...).Scan(
		&s.Questions,
		&s.Answered,
		&s.Unanswered,
		&s.Corrected,
		&s.AvgConfidence,
		&s.MinConfidence,
		&s.MaxConfidence,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	s.AvgConfidence = math.Round(s.AvgConfidence*100) / 100
	return &s, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, cmd StatusCommand) (*Message, error) {
	status, err := ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	if err := r.ready(); err != nil {
		return nil, err
	}

	var answeredAt *time.Time
	if status == StatusAnswered {
		t := r.now().UTC()
		answeredAt = &t
	}

	updateQ := `
		UPDATE messages
		SET status = $1, answered_at = $2
		WHERE id = $3
		` + returning

	m, err := repository.QueryOne(ctx, r.db, updateQ, []any{string(status), answeredAt, id}, scanMessage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("message status updated", "id", id, "status", status)
	return &m, nil
}

func (r *repo) Correct(ctx context.Context, id uuid.UUID, cmd CorrectionCommand) (*Correction, error) {
	directive, err := triage.NewCorrection(id, cmd.Timestamp, cmd.Label, cmd.CorrectedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := r.ready(); err != nil {
		return nil, err
	}

	insertQ := `
		INSERT INTO corrections(message_id, submitted_at, label, previous_label, corrected_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, message_id, submitted_at, label, previous_label, corrected_by, created_at`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Correction, error) {
		var previous string
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(corrected_label, label) FROM messages
			 WHERE id = $1 AND submitted_at = $2 FOR UPDATE`,
			directive.MessageID, directive.Timestamp,
		).Scan(&previous)
		if err != nil {
			return Correction{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		cr, err := repository.QueryOne(ctx, tx, insertQ,
			[]any{
				directive.MessageID,
				directive.Timestamp,
				string(directive.Label),
				previous,
				directive.CorrectedBy,
			},
			scanCorrection,
		)
		if err != nil {
			return Correction{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE messages SET corrected_label = $1 WHERE id = $2",
			string(directive.Label), directive.MessageID,
		); err != nil {
			return Correction{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return cr, nil
	})

	if err != nil {
		return nil, err
	}

	r.logger.Info("message corrected",
		"id", id,
		"label", c.Label,
		"previous_label", c.PreviousLabel,
		"corrected_by", c.CorrectedBy,
	)
	return &c, nil
}

func (r *repo) Corrections(ctx context.Context, id uuid.UUID) ([]Correction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	listQ := `
		SELECT id, message_id, submitted_at, label, previous_label, corrected_by, created_at
		FROM corrections
		WHERE message_id = $1
		ORDER BY created_at`

	items, err := repository.QueryMany(ctx, r.db, listQ, []any{id}, scanCorrection)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ready(); err != nil {
		return err
	}

	auditKey, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*string, error) {
		var key *string
		err := tx.QueryRowContext(ctx,
			"DELETE FROM messages WHERE id = $1 RETURNING audit_key",
			id,
		).Scan(&key)
		return key, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if auditKey != nil && r.store != nil {
		if err := r.store.Delete(ctx, *auditKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("audit record not removed", "id", id, "key", *auditKey, "error", err)
		}
	}

	r.logger.Info("message deleted", "id", id)
	return nil
}

func (r *repo) ready() error {
	if r.db == nil {
		return database.ErrNotReady
	}
	return nil
}

func (r *repo) triage(ctx context.Context, cmd SubmitCommand) (triage.Result, error) {
	if err := cmd.Validate(); err != nil {
		return triage.Result{}, err
	}

	msg, err := triage.NewMessage(cmd.Text, cmd.Author, r.now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return triage.Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return r.engine.Triage(ctx, msg), nil
}

func (r *repo) insert(ctx context.Context, id uuid.UUID, result triage.Result) error {
	if err := r.ready(); err != nil {
		return err
	}

	insertQ := `
		INSERT INTO messages(
			id, text, author_id, submitted_at, label, local_label,
			score, confidence, ai_score, reason, sentiment, fallback
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, insertQ,
		id,
		result.Message.Text,
		result.Message.AuthorID,
		result.Message.SubmittedAt,
		string(result.Hybrid.Label),
		string(result.Local.Label),
		result.Local.Score,
		result.Hybrid.Confidence,
		result.Hybrid.AIScore,
		result.Hybrid.Reason,
		string(result.Local.Analysis.Sentiment),
		result.Hybrid.Fallback,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("message stored", "id", id, "author", result.Message.AuthorID)
	return nil
}

func (r *repo) notify(ctx context.Context, id uuid.UUID, result triage.Result) error {
	if r.notifier == nil {
		return errors.New("notifier not configured")
	}

	event := notify.NewQuestionEvent(
		id,
		result.Message.AuthorID,
		result.Message.Text,
		result.Hybrid.Confidence,
		result.Message.SubmittedAt,
	)
	return r.notifier.NewQuestion(ctx, event)
}

func (r *repo) archive(ctx context.Context, id uuid.UUID, result triage.Result) error {
	record := AuditRecord{
		MessageID:  id,
		Result:     result,
		ArchivedAt: r.now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	key := AuditKey(id, result.Message.SubmittedAt)
	if err := r.store.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE messages SET audit_key = $1 WHERE id = $2",
		key, id,
	); err != nil {
		return fmt.Errorf("record audit key: %w", err)
	}

	return nil
}
