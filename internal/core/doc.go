// Package core provides the business logic for building stock inventory files.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Store: The in-memory, ordered product list of one session.
//   - Service: The main entry point (sessions, imports, export).
//   - Staging: Spreadsheet imports wait for mapping confirmation before any
//     row reaches the store.
//   - Validation: Every product carries its rule violations and a suggestion.
//
// # Import Flow
//
// Spreadsheets (.csv, .txt, .xlsx) are decoded by package sheet, then:
//
//  1. [FindHeaderRow] picks the row with most non-empty cells among the first
//     [MaxHeaderSearchRows]
//  2. [MatchColumns] proposes a [ColumnMapping] from header names
//  3. [Service.StageSpreadsheet] returns an [ImportPreview]
//  4. [Service.CommitSpreadsheet] normalizes rows with the confirmed mapping
//
// Documents (PDF, images) go through a [DocumentExtractor] and are converted
// with [FromCandidates]. The store is only modified when extraction succeeds.
//
// # Export
//
// [GenerateCSV] and [GenerateXML] render products byte for byte as the
// inventory submission expects. XML export is refused while any product has
// validation errors; CSV is always allowed.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (size, type, empty)
//   - IMP001-IMP004: Import staging errors
//   - EXP001-EXP003: Export errors
//   - AI001-AI003: Document extraction errors
//   - SES001-SES002: Session and product lookup
//   - UPL001-UPL003: Concurrency and deadlines
package core
