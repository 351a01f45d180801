package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/auth"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/db"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/rest/handlers"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/adapters/rest/middleware"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/config"
	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

func main() {
	// config
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "groodo server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	// logger
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	log.Info("starting groodo server")

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database adapter
	storage, err := db.New(log, cfg.DBAddress)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("failed to close db connection", "error", err)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	// auth
	tokens, err := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		return fmt.Errorf("failed to init tokens: %w", err)
	}

	// service
	svc := core.NewService(storage,
		core.WithPasswordHasher(auth.NewBcrypt(cfg.PasswordCost)),
		core.WithTokenIssuer(tokens),
	)

	// http
	mux := http.NewServeMux()
	handlers.Register(mux, log, handlers.Deps{
		DB:        storage,
		Tasks:     svc,
		Projects:  svc,
		Documents: svc,
		Users:     svc,
		Tokens:    tokens,
	}, cfg.HTTP.Timeout)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler, err := chain(log, cfg, mux)
	if err != nil {
		return err
	}

	server := http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler:           handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("groodo http server is running", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}
	return nil
}

// chain wraps the mux, outermost first: logging, cors, rate limit, metrics.
func chain(log *slog.Logger, cfg config.Config, mux *http.ServeMux) (http.Handler, error) {
	h := middleware.Metrics(mux)

	if cfg.RateLimit.Enabled {
		limit, err := middleware.RateLimit(cfg.RateLimit.Rate, middleware.NewMemoryStore())
		if err != nil {
			return nil, fmt.Errorf("failed to init rate limiter: %w", err)
		}
		h = limit(h)
	}

	h = middleware.CORS(cfg.CORS.AllowedOrigins)(h)
	return middleware.Logging(log)(h), nil
}

func mustMakeLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
