package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX or JSON)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusFor(err))
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/stockfile/internal/core"
	"github.com/JonMunkholm/stockfile/internal/extract"
	"github.com/JonMunkholm/stockfile/internal/logging"
	"github.com/JonMunkholm/stockfile/internal/sheet"
)

// Transport-level errors. Their text matches core.MapError patterns.
var (
	errFileTooLarge = errors.New("file too large")
	errNoFile       = errors.New("no file provided")
	errRateLimited  = errors.New("rate limit exceeded")
	errBadRequest   = errors.New("malformed request body")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrProductNotFound),
		errors.Is(err, core.ErrStagingNotFound):
		return http.StatusNotFound
	case errors.Is(err, sheet.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrExportBlocked),
		errors.Is(err, core.ErrNothingToExport),
		errors.Is(err, core.ErrTooManyStaged):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoHeaderRow),
		errors.Is(err, core.ErrInvalidMapping),
		errors.Is(err, core.ErrInvalidExportRequest),
		errors.Is(err, sheet.ErrEmptyFile),
		errors.Is(err, sheet.ErrInvalidSpreadsheet),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports),
		errors.Is(err, core.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, extract.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and returns the mapped
// user message, as an HTML fragment for HTMX requests and JSON otherwise.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	switch {
	case !core.IsUserFacing(err):
		logger.Error("unmapped request error", attrs...)
	case statusCode >= http.StatusInternalServerError:
		logger.Error("request error", attrs...)
	default:
		logger.Warn("request error", attrs...)
	}

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, statusCode)
		return
	}
	respondErrorJSON(w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := errorAlert(msg).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error fragment", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
