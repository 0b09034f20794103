package httpx

import (
	"net/http"
	"strings"
)

// CORSConfig controls the headers attached by CORS.
type CORSConfig struct {
	AllowOrigin  string
	AllowMethods []string
	AllowHeaders []string
}

// DefaultCORS is the permissive policy used by the passkey endpoints, which
// are called from the PWA origin with a bearer or anon key header.
var DefaultCORS = CORSConfig{
	AllowOrigin:  "*",
	AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
	AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type", "x-request-id"},
}

// CORS attaches the configured headers to every response and answers
// preflight OPTIONS requests with an empty 200.
func CORS(cfg CORSConfig) Middleware {
	origin := cfg.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
