// Package core provides the business logic for stock file preparation.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE005)
//
//	FILE001 - File exceeds maximum upload size
//	          Action: Split the inventory into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - This file type is not supported
//	          Action: Upload a CSV, XLSX, PDF or image file
//	          Patterns: "unsupported file type"
//
//	FILE003 - The spreadsheet could not be read
//	          Action: Re-export the file as CSV or XLSX and try again
//	          Patterns: "invalid spreadsheet"
//
//	FILE004 - No file was selected
//	          Action: Please select a file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - The uploaded file is empty
//	          Action: Please upload a file with inventory rows
//	          Patterns: "empty file"
//
// # Import Errors (IMP001-IMP004)
//
//	IMP001 - No header row was found in the first rows
//	         Action: Make sure the column titles are in the first 20 rows
//	         Patterns: "no header row found"
//
//	IMP002 - The selected column mapping is invalid
//	         Action: Choose columns that exist in the file
//	         Patterns: "invalid column mapping"
//
//	IMP003 - This import preview has expired
//	         Action: Upload the file again
//	         Patterns: "staged import not found"
//
//	IMP004 - Too many imports are waiting for confirmation
//	         Action: Confirm or discard a pending import first
//	         Patterns: "too many staged imports"
//
// # Export Errors (EXP001-EXP003)
//
//	EXP001 - Some products have validation errors
//	         Action: Fix the highlighted products before exporting XML
//	         Patterns: "export blocked"
//
//	EXP002 - There are no products to export
//	         Action: Import an inventory file first
//	         Patterns: "nothing to export"
//
//	EXP003 - Tax id or fiscal year is invalid
//	         Action: Use a 9-digit tax id and a 4-digit fiscal year
//	         Patterns: "invalid export request"
//
// # Document Extraction Errors (AI001-AI003)
//
//	AI001 - Document reading is not configured
//	        Action: Upload a spreadsheet instead or contact support
//	        Patterns: "document extractor unavailable"
//
//	AI002 - The document could not be interpreted
//	        Action: Try a clearer scan or a spreadsheet export
//	        Patterns: "malformed extractor response"
//
//	AI003 - The document could not be processed
//	        Action: Please try again in a few moments
//	        Patterns: "extract document"
//
// # Session Errors (SES001-SES002)
//
//	SES001 - Your session has expired
//	         Action: Reload the page to start a new session
//	         Patterns: "session not found"
//
//	SES002 - This product no longer exists
//	         Action: Refresh the product list
//	         Patterns: "product not found"
//
// # Upload Errors (UPL001-UPL003)
//
//	UPL001 - Too many documents are being processed
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent imports"
//
//	UPL002 - Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL003 - Request timed out
//	         Action: Try a smaller document or try again later
//	         Patterns: "context deadline exceeded"
//
// # Request Errors (REQ001)
//
//	REQ001 - The request could not be read
//	         Action: Reload the page and try again
//	         Patterns: "malformed request body"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Patterns that carry a sentinel are matched with errors.Is first, so text
// from file names or ids in the wrap chain cannot change the code. The rest
// are matched case-insensitively using strings.Contains on the error text.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/stockfile/internal/sheet"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	target  error // Sentinel matched with errors.Is before any text matching
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// These errors occur before any row is read.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum upload size",
			Action:  "Split the inventory into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		target:  sheet.ErrUnsupportedType,
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a CSV, XLSX, PDF or image file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid spreadsheet",
		target:  sheet.ErrInvalidSpreadsheet,
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Re-export the file as CSV or XLSX and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		target:  sheet.ErrEmptyFile,
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with inventory rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP004)
	// Spreadsheet staging and mapping confirmation.
	// =========================================================================
	{
		pattern: "no header row found",
		target:  ErrNoHeaderRow,
		msg: UserMessage{
			Message: "No header row was found in the first rows",
			Action:  "Make sure the column titles are in the first 20 rows",
			Code:    "IMP001",
		},
	},
	{
		pattern: "invalid column mapping",
		target:  ErrInvalidMapping,
		msg: UserMessage{
			Message: "The selected column mapping is invalid",
			Action:  "Choose columns that exist in the file",
			Code:    "IMP002",
		},
	},
	{
		pattern: "staged import not found",
		target:  ErrStagingNotFound,
		msg: UserMessage{
			Message: "This import preview has expired",
			Action:  "Upload the file again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many staged imports",
		target:  ErrTooManyStaged,
		msg: UserMessage{
			Message: "Too many imports are waiting for confirmation",
			Action:  "Confirm or discard a pending import first",
			Code:    "IMP004",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP003)
	// =========================================================================
	{
		pattern: "export blocked",
		target:  ErrExportBlocked,
		msg: UserMessage{
			Message: "Some products have validation errors",
			Action:  "Fix the highlighted products before exporting XML",
			Code:    "EXP001",
		},
	},
	{
		pattern: "nothing to export",
		target:  ErrNothingToExport,
		msg: UserMessage{
			Message: "There are no products to export",
			Action:  "Import an inventory file first",
			Code:    "EXP002",
		},
	},
	{
		pattern: "invalid export request",
		target:  ErrInvalidExportRequest,
		msg: UserMessage{
			Message: "Tax id or fiscal year is invalid",
			Action:  "Use a 9-digit tax id and a 4-digit fiscal year",
			Code:    "EXP003",
		},
	},

	// =========================================================================
	// Document Extraction Errors (AI001-AI003)
	// Errors from the document AI collaborator. The store is never modified.
	// =========================================================================
	{
		pattern: "document extractor unavailable",
		target:  ErrExtractorUnavailable,
		msg: UserMessage{
			Message: "Document reading is not configured",
			Action:  "Upload a spreadsheet instead or contact support",
			Code:    "AI001",
		},
	},
	{
		pattern: "malformed extractor response",
		msg: UserMessage{
			Message: "The document could not be interpreted",
			Action:  "Try a clearer scan or a spreadsheet export",
			Code:    "AI002",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES002)
	// =========================================================================
	{
		pattern: "session not found",
		target:  ErrSessionNotFound,
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Reload the page to start a new session",
			Code:    "SES001",
		},
	},
	{
		pattern: "product not found",
		target:  ErrProductNotFound,
		msg: UserMessage{
			Message: "This product no longer exists",
			Action:  "Refresh the product list",
			Code:    "SES002",
		},
	},

	// =========================================================================
	// Upload Errors (UPL001-UPL003)
	// =========================================================================
	{
		pattern: "too many concurrent imports",
		target:  ErrTooManyImports,
		msg: UserMessage{
			Message: "Too many documents are being processed",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		target:  context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		target:  context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller document or try again later",
			Code:    "UPL003",
		},
	},

	// Generic extractor failure; after UPL so timeouts keep their own code.
	{
		pattern: "extract document",
		msg: UserMessage{
			Message: "The document could not be processed",
			Action:  "Please try again in a few moments",
			Code:    "AI003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001)
	// =========================================================================
	{
		pattern: "malformed request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Reload the page and try again",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the message of the first pattern whose sentinel is in
// err's chain. Errors without a known sentinel fall back to the first pattern
// contained in their text, then to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err matched a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
