package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/smartclass/triage/pkg/handlers"
	"github.com/smartclass/triage/pkg/routes"
	"github.com/smartclass/triage/pkg/storage"
)

// ErrAuditDisabled is returned when audit storage is not configured.
var ErrAuditDisabled = errors.New("audit storage is not configured")

const auditPrefix = "audit/"

type auditHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newAuditHandler(store storage.System, logger *slog.Logger) *auditHandler {
	return &auditHandler{
		store:  store,
		logger: logger.With("handler", "audit"),
	}
}

func (h *auditHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/audit",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
			{Method: "HEAD", Pattern: "/{key...}", Handler: h.stat},
		},
	}
}

// download streams an archived triage trace. The key is a message's
// audit_key; the "audit/" prefix may be omitted.
func (h *auditHandler) download(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, ErrAuditDisabled)
		return
	}

	body, err := h.store.Download(r.Context(), auditKey(r))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

// stat answers HEAD with 200 when the trace is archived and 404 when not.
func (h *auditHandler) stat(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	ok, err := h.store.Exists(r.Context(), auditKey(r))
	switch {
	case err != nil:
		h.logger.Error("audit stat failed", "error", err)
		w.WriteHeader(storage.MapHTTPStatus(err))
	case !ok:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}
}

func auditKey(r *http.Request) string {
	key := r.PathValue("key")
	if strings.HasPrefix(key, auditPrefix) {
		return key
	}
	return auditPrefix + key
}
