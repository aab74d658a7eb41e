package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartclass/triage/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	type decision struct {
		Outcome string   `json:"outcome"`
		Notices []string `json:"notices"`
	}

	tests := []struct {
		name     string
		status   int
		data     any
		wantBody string
	}{
		{"map", http.StatusOK, map[string]string{"status": "ok"}, `{"status":"ok"}`},
		{"created", http.StatusCreated, decision{Outcome: "ACCEPTED", Notices: []string{}}, `{"outcome":"ACCEPTED","notices":[]}`},
		{"slice", http.StatusOK, []int{1, 2}, `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}

	t.Run("unencodable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handlers.RespondJSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
			t.Error("Content-Type should not claim JSON for a failed encode")
		}
	})
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusBadRequest, "level=WARN"},
		{http.StatusServiceUnavailable, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			rec := httptest.NewRecorder()
			handlers.RespondError(rec, logger, tt.status, errors.New("text is required"))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != "text is required" {
				t.Errorf("error = %q", body["error"])
			}
			if !strings.Contains(logs.String(), tt.wantLevel) {
				t.Errorf("log = %q, want %s", logs.String(), tt.wantLevel)
			}
		})
	}
}
