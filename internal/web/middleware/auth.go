package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/stockfile/internal/config"
)

// APIKeyAuth returns middleware that validates the API key sent in the
// X-API-Key header or as an "Authorization: Bearer" token.
// If RequireAPIKey is false, all requests pass through.
// If RequireAPIKey is true but no keys are configured, all requests are rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := requestAPIKey(r)
			if apiKey == "" {
				slog.Warn("auth: missing API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusUnauthorized, "missing API key", "AUTH001")
				return
			}

			if !isValidAPIKey(apiKey, cfg.APIKeys) {
				slog.Warn("auth: invalid API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusForbidden, "invalid API key", "AUTH002")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestAPIKey prefers X-API-Key and falls back to a bearer token.
func requestAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `","code":"` + code + `"}`))
}

// isValidAPIKey checks if the provided key matches any configured key.
// Uses constant-time comparison and checks ALL keys, so the comparison time
// does not depend on which key matches (or none).
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
