package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "file", "stock.csv")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["file"] != "stock.csv" {
		t.Errorf("entry = %v, want msg=shown file=stock.csv", entry)
	}
}

func TestFromContext_AddsRequestIDAndIP(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = WithClientIP(ctx, "10.0.0.7")

	FromContext(ctx).Info("export built")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-42") {
		t.Errorf("log line missing request_id: %q", out)
	}
	if !strings.Contains(out, "client_ip=10.0.0.7") {
		t.Errorf("log line missing client_ip: %q", out)
	}
}

func TestFromContext_Plain(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	FromContext(context.Background()).Info("tick")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id in %q", buf.String())
	}
}
