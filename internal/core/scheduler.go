package core

// scheduler.go runs background maintenance for in-memory sessions.
//
// Sessions are never persisted, so an abandoned browser tab would otherwise
// hold its products forever. The sweeper periodically:
//  1. Drops sessions idle for longer than SessionIdleTimeout
//  2. Drops staged imports that were never committed within the same window

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionSweeper blocks, sweeping idle sessions every
// SessionSweepInterval until ctx is cancelled.
func (s *Service) StartSessionSweeper(ctx context.Context) {
	slog.Info("session sweeper started",
		"idle_timeout", s.opts.SessionIdleTimeout,
		"interval", s.opts.SessionSweepInterval,
	)

	ticker := time.NewTicker(s.opts.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

// runSweep performs one sweep cycle and logs what it removed.
func (s *Service) runSweep() {
	start := time.Now()
	sessions, staged := s.sweep(s.now())
	if sessions == 0 && staged == 0 {
		slog.Debug("session sweep found nothing to remove")
		return
	}
	slog.Info("session sweep completed",
		"sessions_removed", sessions,
		"staged_removed", staged,
		"sessions_active", s.SessionCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// sweep removes sessions last seen before now-SessionIdleTimeout and stale
// staged imports of the survivors.
func (s *Service) sweep(now time.Time) (sessionsRemoved, stagedRemoved int) {
	cutoff := now.Add(-s.opts.SessionIdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.lastSeen.Before(cutoff) {
			sess.mu.Unlock()
			delete(s.sessions, id)
			sessionsRemoved++
			continue
		}
		for sid, st := range sess.staged {
			if st.created.Before(cutoff) {
				delete(sess.staged, sid)
				stagedRemoved++
			}
		}
		sess.mu.Unlock()
	}
	return sessionsRemoved, stagedRemoved
}
