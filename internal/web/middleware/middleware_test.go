package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/stockfile/internal/config"
	"github.com/JonMunkholm/stockfile/internal/logging"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAPIKeyAuth(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}
	h := APIKeyAuth(cfg)(okHandler)

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusForbidden},
		{"header key", "X-API-Key", "k2", http.StatusOK},
		{"bearer token", "Authorization", "Bearer k1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{})(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "untrusted source ignores headers",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.5:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.5:4000",
		},
		{
			name:       "trusted proxy with X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "trusted bare IP with X-Forwarded-For chain",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:4000",
			headers:    map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"},
			want:       "5.6.7.8",
		},
		{
			name:       "invalid forwarded value keeps remote",
			trusted:    []string{"127.0.0.1/32"},
			remoteAddr: "127.0.0.1:4000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "127.0.0.1:4000",
		},
		{
			name:       "invalid cidr skipped",
			trusted:    []string{"garbage", ""},
			remoteAddr: "127.0.0.1:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "127.0.0.1:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	var ctxIP string
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxIP = logging.ClientIP(r.Context())
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if ctxIP != "192.0.2.1" {
		t.Errorf("client IP in context = %q, want 192.0.2.1", ctxIP)
	}
	out := buf.String()
	for _, want := range []string{"status=201", "bytes=5", "path=/api/sessions", "client_ip=192.0.2.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}
