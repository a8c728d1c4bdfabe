package core

import "errors"

// Sentinel errors returned by the service. Callers match them with errors.Is;
// MapError turns them into user messages.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrStagingNotFound      = errors.New("staged import not found")
	ErrTooManyStaged        = errors.New("too many staged imports")
	ErrNoHeaderRow          = errors.New("no header row found")
	ErrInvalidMapping       = errors.New("invalid column mapping")
	ErrExportBlocked        = errors.New("export blocked: products have validation errors")
	ErrNothingToExport      = errors.New("nothing to export")
	ErrInvalidExportRequest = errors.New("invalid export request")
	ErrExtractorUnavailable = errors.New("document extractor unavailable")
)
