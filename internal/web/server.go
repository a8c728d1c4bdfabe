// Package web provides the HTTP server and handlers for the stock file builder.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/stockfile/internal/config"
	"github.com/JonMunkholm/stockfile/internal/core"
	"github.com/JonMunkholm/stockfile/internal/metrics"
	appmw "github.com/JonMunkholm/stockfile/internal/web/middleware"
)

// Server is the HTTP server for the stock file builder.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	metrics  *metrics.Metrics
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(appmw.APIKeyAuth(&s.cfg.Security))

			r.Get("/imports/status", s.handleImportQueueStatus)
			r.Get("/categories", s.handleCategories)
			r.Post("/sessions", s.handleCreateSession)

			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteSession)

				// Imports: spreadsheets are staged, documents are extracted
				imports := r.With()
				if s.cfg.Rate.Enabled {
					imports = r.With(s.newRateLimiter(s.cfg.Rate.UploadLimit).middleware)
				}
				imports.Post("/imports", s.handleImport)
				r.Get("/imports/{stagingID}", s.handlePreview)
				r.Post("/imports/{stagingID}/commit", s.handleCommit)
				r.Delete("/imports/{stagingID}", s.handleDiscard)

				// Products
				r.Get("/products", s.handleListProducts)
				r.Patch("/products/{productID}", s.handleUpdateProduct)
				r.Delete("/products/{productID}", s.handleDeleteProduct)

				// Collection operations
				r.Post("/validate", s.handleRevalidate)
				r.Post("/reset", s.handleReset)
				r.Get("/stats", s.handleStats)

				// Export download
				r.Get("/export/{format}", s.handleExport)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
