// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Session   SessionConfig
	Extractor ExtractorConfig
	Export    ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. Document imports
	// wait on the AI call, so keep this above EXTRACTOR_TIMEOUT (default: 110s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"110s"`
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel document extractions (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an extraction slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for import endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey turns on X-API-Key authentication for /api routes
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SessionConfig holds in-memory session settings.
type SessionConfig struct {
	// IdleTimeout is how long an untouched session is kept (default: 2h)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"2h"`

	// SweepInterval is how often expired sessions are dropped (default: 5m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"5m"`

	// MaxStaged caps spreadsheet imports awaiting mapping confirmation per session (default: 5)
	MaxStaged int `env:"SESSION_MAX_STAGED" default:"5"`
}

// ExtractorConfig holds document AI settings. An empty APIKey disables
// document imports; spreadsheet imports keep working.
type ExtractorConfig struct {
	APIKey string `env:"GEMINI_API_KEY" envAlt:"API_KEY"`

	// Model is the Gemini model used for extraction (default: gemini-2.5-pro)
	Model string `env:"GEMINI_MODEL" default:"gemini-2.5-pro"`

	// Timeout bounds a single extraction call (default: 90s)
	Timeout time.Duration `env:"EXTRACTOR_TIMEOUT" default:"90s"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	// DefaultTaxID prefills the tax id when the request omits it
	DefaultTaxID string `env:"EXPORT_DEFAULT_TAX_ID"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
