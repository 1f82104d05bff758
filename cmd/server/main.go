package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-expense-tracker/internal/config"
	"ai-expense-tracker/internal/handlers"
	"ai-expense-tracker/internal/logging"
	"ai-expense-tracker/internal/parser"
	"ai-expense-tracker/internal/storage"
)

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.AIAPIKey == "" {
		logger.Warn("AI_API_KEY is not set; expense parsing will fail")
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	p := parser.New(parser.Config{
		URL:    cfg.AIAPIURL,
		Model:  cfg.AIModel,
		APIKey: cfg.AIAPIKey,
	}, logger)

	h := handlers.New(db, p, logger, cfg.AITimeout())
	mux := setupRouter(h)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	// Shut down cleanly on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "db", cfg.DBPath, "model", cfg.AIModel)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

// setupRouter registers all routes on a new mux.
func setupRouter(h *handlers.Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /expenses", h.AddExpense)
	mux.HandleFunc("GET /expenses", h.ListExpenses)
	mux.HandleFunc("DELETE /expenses/{id}", h.DeleteExpense)
	mux.HandleFunc("GET /statistics", h.Statistics)
	mux.HandleFunc("GET /health", h.Health)

	return mux
}
