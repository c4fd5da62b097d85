// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/nikolaef43/brenner-bot-sub013/internal/api"
	"github.com/nikolaef43/brenner-bot-sub013/internal/compilelog"
	"github.com/nikolaef43/brenner-bot-sub013/internal/compilesvc"
	"github.com/nikolaef43/brenner-bot-sub013/internal/mailbox"
	"github.com/nikolaef43/brenner-bot-sub013/internal/mcpserver"
	"github.com/nikolaef43/brenner-bot-sub013/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("mailbox_mode", cfg.Mailbox.Mode),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Build the mailbox transport unless one was injected.
	mail := app.mail
	spoolRoot := ""
	if mail == nil {
		switch cfg.Mailbox.Mode {
		case MailboxModeHTTP:
			mail = mailbox.NewHTTPClient(cfg.Mailbox.BaseURL, cfg.Mailbox.Token)
		case MailboxModeSpool:
			if err := os.MkdirAll(cfg.Mailbox.Spool, 0o755); err != nil {
				return fmt.Errorf("create spool dir: %w", err)
			}
			spool, err := mailbox.NewSpool(cfg.Mailbox.Spool)
			if err != nil {
				return fmt.Errorf("init spool: %w", err)
			}
			mail = spool
			spoolRoot = cfg.Mailbox.Spool
		default:
			return fmt.Errorf("unknown mailbox mode %q", cfg.Mailbox.Mode)
		}
	}

	// Compile audit log.
	db, err := compilelog.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init compile log: %w", err)
	}
	defer db.Close()

	svc := compilesvc.NewService(mail, db)

	// MCP stdio mode exposes the same service to agent participants and
	// skips the HTTP surface entirely.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the spool for new messages and push thread events.
	if spoolRoot != "" {
		g.Go(func() error {
			return mailbox.Watch(gCtx, spoolRoot, logger, func(threadID string) {
				broker.PublishThreadUpdated(threadID)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
