package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/stockfile/internal/config"
	"github.com/JonMunkholm/stockfile/internal/core"
	"github.com/JonMunkholm/stockfile/internal/extract"
	"github.com/JonMunkholm/stockfile/internal/logging"
	"github.com/JonMunkholm/stockfile/internal/metrics"
	"github.com/JonMunkholm/stockfile/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"extractor_enabled", cfg.Extractor.APIKey != "",
	)

	// The gauge samples the service lazily, so it can be registered first
	var service *core.Service
	m := metrics.New(func() int { return service.SessionCount() })

	// Document imports are optional; without a key only spreadsheets work
	var extractor core.DocumentExtractor
	if cfg.Extractor.APIKey != "" {
		gemini, err := extract.NewGemini(context.Background(), extract.Config{
			APIKey:  cfg.Extractor.APIKey,
			Model:   cfg.Extractor.Model,
			Timeout: cfg.Extractor.Timeout,
		})
		if err != nil {
			slog.Error("failed to create document extractor", "error", err)
			os.Exit(1)
		}
		extractor = m.InstrumentExtractor(gemini)
		slog.Info("document extractor ready", "model", cfg.Extractor.Model)
	} else {
		slog.Warn("GEMINI_API_KEY not set, document imports disabled")
	}

	service = core.NewService(core.Options{
		MaxConcurrentImports: cfg.Upload.MaxConcurrent,
		ImportWait:           cfg.Upload.MaxWaitTime,
		ExtractTimeout:       cfg.Extractor.Timeout,
		SessionIdleTimeout:   cfg.Session.IdleTimeout,
		SessionSweepInterval: cfg.Session.SweepInterval,
		MaxStagedPerSession:  cfg.Session.MaxStaged,
		DefaultTaxID:         cfg.Export.DefaultTaxID,
	}, extractor)

	server := web.NewServer(service, cfg, m)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight extractions (with timeout)
		if st := service.LimiterStatus(); st.Active > 0 {
			slog.Info("waiting for document imports to complete", "active", st.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("document imports did not complete in time", "error", err)
			} else {
				slog.Info("all document imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
