package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/stockfile/internal/logging"
	"github.com/JonMunkholm/stockfile/internal/sheet"
)

// DocumentExtractor turns a document (PDF, image) into candidate products.
// Implementations must not retain data after returning.
type DocumentExtractor interface {
	Extract(ctx context.Context, fileName, mimeType string, data []byte) ([]Candidate, error)
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	MaxConcurrentImports int           // Parallel document extractions
	ImportWait           time.Duration // Max wait for an extraction slot
	ExtractTimeout       time.Duration // Per-document extraction deadline
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
	MaxStagedPerSession  int
	DefaultTaxID         string // Used when an export request omits the tax id
}

// Defaults for Options.
const (
	DefaultExtractTimeout       = 90 * time.Second
	DefaultSessionIdleTimeout   = 2 * time.Hour
	DefaultSessionSweepInterval = 5 * time.Minute
	DefaultMaxStagedPerSession  = 5
)

func (o Options) withDefaults() Options {
	if o.ExtractTimeout <= 0 {
		o.ExtractTimeout = DefaultExtractTimeout
	}
	if o.SessionIdleTimeout <= 0 {
		o.SessionIdleTimeout = DefaultSessionIdleTimeout
	}
	if o.SessionSweepInterval <= 0 {
		o.SessionSweepInterval = DefaultSessionSweepInterval
	}
	if o.MaxStagedPerSession <= 0 {
		o.MaxStagedPerSession = DefaultMaxStagedPerSession
	}
	return o
}

// Service owns every session and coordinates imports and exports.
type Service struct {
	opts      Options
	extractor DocumentExtractor
	limiter   *ImportLimiter
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// session is one user's working set: a store plus imports awaiting
// mapping confirmation.
type session struct {
	id    string
	store *Store

	mu       sync.Mutex
	staged   map[string]*stagedImport
	lastSeen time.Time
}

// NewService creates a Service. extractor may be nil, in which case document
// imports fail with ErrExtractorUnavailable.
func NewService(opts Options, extractor DocumentExtractor) *Service {
	opts = opts.withDefaults()
	return &Service{
		opts:      opts,
		extractor: extractor,
		limiter:   NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// CreateSession starts an empty session and returns its id.
func (s *Service) CreateSession() string {
	id := uuid.NewString()
	sess := &session{
		id:       id,
		store:    NewStore(),
		staged:   make(map[string]*stagedImport),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	slog.Debug("session created", "session_id", id)
	return id
}

// DeleteSession discards a session and all its products.
func (s *Service) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("delete session %s: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Store returns the product store of a session and marks it as active.
func (s *Service) Store(sessionID string) (*Store, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.store, nil
}

// LimiterStatus reports document import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// Drain waits for in-flight document imports to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) session(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	sess.mu.Lock()
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// StageSpreadsheet decodes a spreadsheet, detects its header row and proposes
// a column mapping. The rows are held under the returned staging id until
// CommitSpreadsheet or DiscardStaged; the store is not touched.
func (s *Service) StageSpreadsheet(ctx context.Context, sessionID, fileName string, data []byte) (*ImportPreview, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	// File names stay out of error text so MapError only sees our own wording
	grid, err := sheet.Decode(fileName, data)
	if err != nil {
		logging.FromContext(ctx).Warn("spreadsheet rejected", "session_id", sessionID, "file", fileName, "error", err)
		return nil, fmt.Errorf("stage spreadsheet: %w", err)
	}

	st, err := newStagedImport(uuid.NewString(), fileName, grid, s.now())
	if err != nil {
		logging.FromContext(ctx).Warn("spreadsheet rejected", "session_id", sessionID, "file", fileName, "error", err)
		return nil, fmt.Errorf("stage spreadsheet: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.staged) >= s.opts.MaxStagedPerSession {
		return nil, fmt.Errorf("stage spreadsheet: %w (limit %d)", ErrTooManyStaged, s.opts.MaxStagedPerSession)
	}
	sess.staged[st.id] = st

	logging.FromContext(ctx).Info("spreadsheet staged",
		"session_id", sessionID,
		"staging_id", st.id,
		"file", fileName,
		"header_row", st.headerRow,
		"data_rows", len(st.rows),
	)
	return st.preview(sessionID), nil
}

// Preview returns the preview of an import that is still staged.
func (s *Service) Preview(sessionID, stagingID string) (*ImportPreview, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	st, ok := sess.staged[stagingID]
	if !ok {
		return nil, fmt.Errorf("preview %s: %w", stagingID, ErrStagingNotFound)
	}
	return st.preview(sessionID), nil
}

// CommitSpreadsheet normalizes the staged rows with m and appends them to the
// session store in one step. The staging entry is consumed on success.
func (s *Service) CommitSpreadsheet(ctx context.Context, sessionID, stagingID string, m ColumnMapping) (*ImportResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	st, ok := sess.staged[stagingID]
	if !ok {
		sess.mu.Unlock()
		return nil, fmt.Errorf("commit %s: %w", stagingID, ErrStagingNotFound)
	}
	if err := m.Validate(st.width); err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("commit %s: %w", stagingID, err)
	}
	delete(sess.staged, stagingID)
	sess.mu.Unlock()

	products, skipped := NormalizeRows(st.rows, m)
	stored := sess.store.Append(products...)

	res := newImportResult(sessionID, st.fileName, stored, sess.store.Stats())
	res.Skipped = skipped

	logging.FromContext(ctx).Info("spreadsheet committed",
		"session_id", sessionID,
		"file", st.fileName,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"with_errors", res.WithErrors,
	)
	return res, nil
}

// DiscardStaged drops a staged import without committing it.
func (s *Service) DiscardStaged(sessionID, stagingID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, ok := sess.staged[stagingID]; !ok {
		return fmt.Errorf("discard %s: %w", stagingID, ErrStagingNotFound)
	}
	delete(sess.staged, stagingID)
	return nil
}

// ImportDocument runs a document through the extractor and appends the
// resulting products. The store is only modified after the extractor returns
// successfully; any failure leaves it as it was.
func (s *Service) ImportDocument(ctx context.Context, sessionID, fileName, mimeType string, data []byte) (*ImportResult, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("import document: %w", ErrExtractorUnavailable)
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("import document: %w", sheet.ErrEmptyFile)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("import document: %w", err)
	}
	defer s.limiter.Release()

	extractCtx, cancel := context.WithTimeout(ctx, s.opts.ExtractTimeout)
	defer cancel()

	start := s.now()
	cands, err := s.extractor.Extract(extractCtx, fileName, mimeType, data)
	if err != nil {
		logging.FromContext(ctx).Warn("document extraction failed",
			"session_id", sessionID,
			"file", fileName,
			"duration_ms", s.now().Sub(start).Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("import document: %w", err)
	}

	stored := sess.store.Append(FromCandidates(cands)...)
	res := newImportResult(sessionID, fileName, stored, sess.store.Stats())

	logging.FromContext(ctx).Info("document imported",
		"session_id", sessionID,
		"file", fileName,
		"mime_type", mimeType,
		"imported", res.Imported,
		"with_errors", res.WithErrors,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return res, nil
}

func newImportResult(sessionID, fileName string, stored []Product, stats Stats) *ImportResult {
	withErrors := 0
	for _, p := range stored {
		if p.HasErrors() {
			withErrors++
		}
	}
	return &ImportResult{
		SessionID:  sessionID,
		FileName:   fileName,
		Phase:      PhaseCommitted,
		Imported:   len(stored),
		WithErrors: withErrors,
		Products:   stored,
		Stats:      stats,
	}
}

// Export renders the session's products. XML is refused while any product
// has validation errors; CSV is always allowed. An empty session has nothing
// to export in either format.
func (s *Service) Export(sessionID string, req ExportRequest) (*ExportFile, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if req.TaxID == "" {
		req.TaxID = s.opts.DefaultTaxID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	products := sess.store.All()
	if len(products) == 0 {
		return nil, fmt.Errorf("export %s: %w", req.Format, ErrNothingToExport)
	}
	if req.Format == FormatXML {
		for _, p := range products {
			if p.HasErrors() {
				return nil, fmt.Errorf("export %s: %w", req.Format, ErrExportBlocked)
			}
		}
	}

	f := BuildExport(products, req, s.now())
	return &f, nil
}
