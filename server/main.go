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

	"github.com/gavelak/gavel-exporter/internal/basis"
	"github.com/gavelak/gavel-exporter/internal/config"
	"github.com/gavelak/gavel-exporter/internal/logger"
	"github.com/gavelak/gavel-exporter/internal/pipeline"
	"github.com/gavelak/gavel-exporter/internal/session"
	"github.com/gavelak/gavel-exporter/internal/web"
)

func main() {
	log := logger.New("server")
	cfg, err := config.LoadServer()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	encoders, err := config.LoadEncoders(cfg.EncodersPath)
	if err != nil {
		log.Error("load encoder roster", slog.Any("err", err))
		os.Exit(1)
	}

	client := basis.New(cfg.BasisBaseURL, cfg.BasisVersion, cfg.FetchTimeout, log)
	fetcher := retryingFetcher{
		client: client,
		policy: basis.RetryPolicy{Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff},
	}
	runner := pipeline.NewRunner(fetcher, cfg.FetchWorkers, log)
	sessions := session.NewManager(cfg.SessionTTL)

	srv := web.NewServer(cfg, encoders, runner, sessions, log)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// retryingFetcher applies the configured per-date retry policy without
// touching the partial-result semantics across dates.
type retryingFetcher struct {
	client *basis.Client
	policy basis.RetryPolicy
}

func (f retryingFetcher) Fetch(ctx context.Context, date time.Time) ([]basis.Meeting, error) {
	return f.client.FetchWithRetry(ctx, date, f.policy)
}
