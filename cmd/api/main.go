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

	"shelf/internal/book"
	"shelf/internal/config"
	"shelf/internal/httpx"
	"shelf/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	backend, err := storage.Open(openCtx, cfg.Storage(), logger)
	cancel()
	if err != nil {
		return err
	}
	defer backend.Close()

	store := book.NewStore(backend, book.WithKey(cfg.StoreKey), book.WithLogger(logger))
	if err := store.Load(ctx); err != nil {
		if !errors.Is(err, book.ErrCorruptSnapshot) {
			return err
		}
		logger.Warn("stored collection could not be read, starting empty", "key", store.Key(), "error", err)
	}
	logger.Info("library loaded", "backend", cfg.StoreBackend, "key", store.Key(), "count", store.Len())

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(ctx, cfg, logger, store, backend),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newRouter(ctx context.Context, cfg config.Config, logger *slog.Logger, store *book.Store, backend storage.Backend) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		probeCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := probe(probeCtx, backend, store.Key()); err != nil {
			logger.Warn("readiness probe failed", "error", err)
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	book.NewHTTPHandler(store).Register(router)

	middlewares := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(logger),
		httpx.AccessLogMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	}
	if cfg.RateLimitRPS > 0 {
		middlewares = append(middlewares, httpx.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...).Middleware)
	}
	return httpx.Chain(router, middlewares...)
}

// probe pings backends that support it and falls back to reading the collection key.
func probe(ctx context.Context, backend storage.Backend, key string) error {
	if p, ok := backend.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	_, _, err := backend.Read(ctx, key)
	return err
}
