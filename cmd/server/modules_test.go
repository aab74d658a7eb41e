package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

func TestBuildRouterHealthChecks(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz", false, "/healthz", http.StatusOK, `"ok"`},
		{"readyz pending", false, "/readyz", http.StatusServiceUnavailable, `"not ready"`},
		{"readyz ready", true, "/readyz", http.StatusOK, `"ready"`},
		{"unknown", true, "/metrics", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := buildRouter(readiness(tt.ready))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
