package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/stockfile/internal/core"
	"github.com/JonMunkholm/stockfile/internal/sheet"
)

// documentTypes maps accepted document extensions to the MIME type sent to
// the extractor.
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// documentMIME returns the MIME type for a document upload, or "" when the
// file is neither a known document extension nor sniffed as one.
func documentMIME(name string, data []byte) string {
	if mt, ok := documentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	sniffed := mimetype.Detect(data)
	for _, mt := range documentTypes {
		if sniffed.Is(mt) {
			return mt
		}
	}
	return ""
}

// handleImport accepts a multipart "file". Spreadsheets are staged and a
// preview is returned for mapping confirmation; documents go through the
// extractor and are appended directly.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	name, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if sheet.IsSpreadsheet(name) {
		pv, err := s.service.StageSpreadsheet(r.Context(), sessionID, name, data)
		if err != nil {
			s.metrics.ObserveImport("spreadsheet", err, 0, 0)
			respondError(w, r, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, pv)
		return
	}

	mimeType := documentMIME(name, data)
	if mimeType == "" {
		err := fmt.Errorf("import: %w", sheet.ErrUnsupportedType)
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.ImportDocument(r.Context(), sessionID, name, mimeType, data)
	if err != nil {
		s.metrics.ObserveImport("document", err, 0, 0)
		respondError(w, r, err, statusFor(err))
		return
	}
	s.metrics.ObserveImport("document", nil, res.Imported, res.WithErrors)
	writeJSON(w, http.StatusOK, res)
}

// readUpload reads the "file" form field, enforcing the configured size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fmt.Errorf("%w: limit %d bytes", errFileTooLarge, maxSize)
		}
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// handlePreview returns the preview of a staged spreadsheet again.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	pv, err := s.service.Preview(chi.URLParam(r, "sessionID"), chi.URLParam(r, "stagingID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

// handleCommit applies the confirmed column mapping to a staged spreadsheet.
// Fields omitted from the JSON body stay unmapped.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	m := core.UnmappedColumns()
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		err = fmt.Errorf("%w: %v", errBadRequest, err)
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.CommitSpreadsheet(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "stagingID"), m)
	if err != nil {
		s.metrics.ObserveImport("spreadsheet", err, 0, 0)
		respondError(w, r, err, statusFor(err))
		return
	}
	s.metrics.ObserveImport("spreadsheet", nil, res.Imported, res.WithErrors)
	writeJSON(w, http.StatusOK, res)
}

// handleDiscard drops a staged spreadsheet.
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardStaged(chi.URLParam(r, "sessionID"), chi.URLParam(r, "stagingID")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
