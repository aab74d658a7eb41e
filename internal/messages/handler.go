package messages

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/smartclass/triage/pkg/handlers"
	"github.com/smartclass/triage/pkg/pagination"
	"github.com/smartclass/triage/pkg/routes"
)

// Handler provides HTTP endpoints for message operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxBodySize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config and body limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodySize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "messages"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for message endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/messages",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "PUT", Pattern: "/{id}/status", Handler: h.UpdateStatus},
			{Method: "POST", Pattern: "/{id}/corrections", Handler: h.Correct},
			{Method: "GET", Pattern: "/{id}/corrections", Handler: h.Corrections},
		},
	}
}

// Submit triages a new message. Every triage outcome answers 200; only
// malformed input is rejected.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd SubmitCommand
	if h.decode(w, r, &cmd) {
		result, err := h.sys.Submit(r.Context(), cmd)
		h.reply(w, http.StatusOK, result, err)
	}
}

// Classify runs the pipeline without side effects and returns the trace.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var cmd SubmitCommand
	if h.decode(w, r, &cmd) {
		result, err := h.sys.Classify(r.Context(), cmd)
		h.reply(w, http.StatusOK, result, err)
	}
}

// List pages through stored questions, newest first by default.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.sys.List(r.Context(), pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
	h.reply(w, http.StatusOK, result, err)
}

// Search is List with the page and filters taken from a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	h.reply(w, http.StatusOK, result, err)
}

// Stats reports question totals and confidence figures, optionally bounded
// by the from and to query parameters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	window, err := WindowFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	stats, err := h.sys.Stats(r.Context(), window)
	h.reply(w, http.StatusOK, stats, err)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.pathID(w, r); ok {
		m, err := h.sys.Find(r.Context(), id)
		h.reply(w, http.StatusOK, m, err)
	}
}

// UpdateStatus marks a question answered, stamping answered_at, or reopens it.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var cmd StatusCommand
	if h.decode(w, r, &cmd) {
		m, err := h.sys.UpdateStatus(r.Context(), id, cmd)
		h.reply(w, http.StatusOK, m, err)
	}
}

// Correct records a label override and answers 201 with the correction.
func (h *Handler) Correct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var cmd CorrectionCommand
	if h.decode(w, r, &cmd) {
		c, err := h.sys.Correct(r.Context(), id, cmd)
		h.reply(w, http.StatusCreated, c, err)
	}
}

func (h *Handler) Corrections(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.pathID(w, r); ok {
		items, err := h.sys.Corrections(r.Context(), id)
		h.reply(w, http.StatusOK, items, err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reply writes v with status, or the mapped error when err is set.
func (h *Handler) reply(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, status, v)
}

// pathID parses the {id} segment. A malformed id cannot name a stored
// message, so it answers 400 with ErrNotFound.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// decode reads a JSON body capped at maxBodySize. Oversized bodies answer
// 413 and anything else unparsable 400.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := r.Body
	if h.maxBodySize > 0 {
		body = http.MaxBytesReader(w, body, h.maxBodySize)
	}

	err := json.NewDecoder(body).Decode(v)
	if err == nil {
		return true
	}

	status := http.StatusBadRequest
	if _, ok := errors.AsType[*http.MaxBytesError](err); ok {
		status = http.StatusRequestEntityTooLarge
	}
	handlers.RespondError(w, h.logger, status, err)
	return false
}
