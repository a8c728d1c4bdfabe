package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct recursively populates struct fields from environment variables.
// Every missing required variable is reported, not just the first.
func loadStruct(v reflect.Value) error {
	var missing []string
	if err := walkFields(v, &missing); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func walkFields(v reflect.Value, missing *[]string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		// Section structs (Server, Upload, ...) recurse
		if field.Type.Kind() == reflect.Struct {
			if err := walkFields(fieldVal, missing); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, ok := lookupEnv(envName, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				*missing = append(*missing, envName)
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// lookupEnv returns the first non-empty value among the primary and
// alternate variable names.
func lookupEnv(name, alt string) (string, bool) {
	if v := os.Getenv(name); v != "" {
		return v, true
	}
	if alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v, true
		}
	}
	return "", false
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Session validation
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, "SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, "SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxStaged <= 0 {
		errs = append(errs, "SESSION_MAX_STAGED must be positive")
	}

	// Extractor validation
	if c.Extractor.Timeout <= 0 {
		errs = append(errs, "EXTRACTOR_TIMEOUT must be positive")
	}
	if c.Extractor.APIKey != "" && c.Extractor.Model == "" {
		errs = append(errs, "GEMINI_MODEL is required when GEMINI_API_KEY is set")
	}

	// Export validation
	if id := c.Export.DefaultTaxID; id != "" && !isDigits(id, 9) {
		errs = append(errs, fmt.Sprintf("EXPORT_DEFAULT_TAX_ID (%q) must be 9 digits", id))
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String returns a safe string representation of the config for logging.
// Secrets such as the Gemini API key are masked.
func (c *Config) String() string {
	key := "[UNSET]"
	if c.Extractor.APIKey != "" {
		key = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Session: {IdleTimeout: %s, MaxStaged: %d}, ",
		c.Session.IdleTimeout, c.Session.MaxStaged))
	b.WriteString(fmt.Sprintf("Extractor: {APIKey: %s, Model: %q, Timeout: %s}, ",
		key, c.Extractor.Model, c.Extractor.Timeout))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
