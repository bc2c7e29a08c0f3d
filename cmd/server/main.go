// LeadFlow - Stage-driven conversation server for company-opening intake.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rmoraes/leadflow/internal/api"
	"github.com/rmoraes/leadflow/internal/channels"
	"github.com/rmoraes/leadflow/internal/config"
	"github.com/rmoraes/leadflow/internal/llm"
	"github.com/rmoraes/leadflow/internal/middleware"
	"github.com/rmoraes/leadflow/internal/orchestrator"
	"github.com/rmoraes/leadflow/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	var model llm.Client
	if cfg.LLMProvider == "mock" {
		slog.Warn("LLM_PROVIDER=mock, model replies are canned")
		model = llm.NewMockClient("Ambiente de teste: nenhum modelo de linguagem configurado.")
	} else {
		model = llm.NewOpenRouterClient(cfg.OpenRouterBaseURL, cfg.OpenRouterToken, cfg.OpenRouterModel, cfg.LLMTimeout)
	}

	orch := orchestrator.New(repo, model, orchestrator.Options{
		HistoryLimit:           cfg.HistoryLimit,
		PromptHistory:          cfg.PromptHistory,
		QualificationThreshold: cfg.QualificationThreshold,
	})

	// Initialize handlers.
	sessionHandler := api.NewSessionHandler(orch)
	healthHandler := api.NewHealthHandler(repo)
	chatHandler := channels.NewChatHandler(orch, cfg.FrontendURL, cfg.IsDevelopment())
	telegramHandler := channels.NewTelegramHandler(orch, cfg.TelegramBotToken)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	sessionHandler.RegisterRoutes(r)

	// WebSocket chat endpoint.
	r.Get("/ws/chat", chatHandler.ServeHTTP)

	if telegramHandler.Enabled() {
		r.Post("/webhooks/telegram", telegramHandler.ServeHTTP)
		slog.Info("Telegram webhook enabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket chat sessions stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCleanupWorker(ctx, repo, cfg.SessionTTL)
	slog.Info("Cleanup worker started", "session_ttl", cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// startCleanupWorker periodically removes conversations idle past the TTL.
func startCleanupWorker(ctx context.Context, repo store.Repository, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := repo.CleanupStaleConversations(ctx, ttl)
				if err != nil {
					slog.Error("Stale conversation cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("Stale conversations removed", "count", removed)
				}
			}
		}
	}()
}
