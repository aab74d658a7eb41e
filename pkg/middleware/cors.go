package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORS echoes an allowed Origin back with the configured policy headers and
// answers OPTIONS preflights itself. Requests from other origins pass
// through without CORS headers, so the browser blocks them. The middleware
// is a no-op when disabled or when no origins are listed.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled || len(cfg.Origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	policy := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowedMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowedHeaders, ", "),
	}
	if cfg.AllowCredentials {
		policy["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		policy["Access-Control-Max-Age"] = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin := r.Header.Get("Origin"); slices.Contains(cfg.Origins, origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				for k, v := range policy {
					h.Set(k, v)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
