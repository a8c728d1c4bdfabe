package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/stockfile/internal/core"
	"github.com/JonMunkholm/stockfile/internal/logging"
)

// handleExport streams the stock file as a download.
//
// Query parameters: tax_id (optional when a default is configured), year,
// valued (bool).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := core.ExportRequest{
		Format:     chi.URLParam(r, "format"),
		TaxID:      q.Get("tax_id"),
		FiscalYear: q.Get("year"),
		Valued:     parseBoolParam(r, "valued"),
	}

	f, err := s.service.Export(chi.URLParam(r, "sessionID"), req)
	label := req.Format
	if label != core.FormatCSV && label != core.FormatXML {
		label = "other"
	}
	s.metrics.ObserveExport(label, err)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", f.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
	if _, err := w.Write(f.Content); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "file", f.Name, "error", err)
	}
}
