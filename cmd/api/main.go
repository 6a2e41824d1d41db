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

	"github.com/joho/godotenv"

	"github.com/nandanihada/Survey-AI-sub001/internal/config"
	"github.com/nandanihada/Survey-AI-sub001/internal/httpserver"
	"github.com/nandanihada/Survey-AI-sub001/internal/relay"
	"github.com/nandanihada/Survey-AI-sub001/internal/store"
)

// main boots the relay: config → DB → schema → relay core → HTTP server,
// then shuts down gracefully: stop accepting inbound calls, drain in-flight
// outbound dispatches so no attempt log is lost, close the pool.
func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build`
	// is enough.
	if err := db.EnsureSchema(); err != nil {
		logger.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.DispatchTimeout}
	rl := relay.New(db, db, db, db, client, logger)

	router := httpserver.NewRouter(cfg, db, rl)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Detached dispatches triggered before the listener closed must still
	// complete and be logged.
	rl.Drain()
	logger.Info("shutdown complete")
}
