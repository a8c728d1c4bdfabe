package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleHealth reports liveness and current load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
		"imports":  s.service.LimiterStatus(),
	})
}

// handleCreateSession starts an empty session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.service.CreateSession()
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// handleDeleteSession discards a session and everything in it.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSession(chi.URLParam(r, "sessionID")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportQueueStatus returns the current state of the document import
// limiter. Used for monitoring and by the UI before large uploads.
func (s *Server) handleImportQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}
