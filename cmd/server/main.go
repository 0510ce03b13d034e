// Package main runs the musecraft API server: creative prompt generation,
// writing/drawing feedback, and session management for the web client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/musecraft/musecraft/internal/auth"
	"github.com/musecraft/musecraft/internal/config"
	"github.com/musecraft/musecraft/internal/feedback"
	"github.com/musecraft/musecraft/internal/generation"
	"github.com/musecraft/musecraft/internal/logging"
	"github.com/musecraft/musecraft/internal/metrics"
	"github.com/musecraft/musecraft/internal/ratelimit"
	"github.com/musecraft/musecraft/internal/server"
	"github.com/musecraft/musecraft/internal/storage"
	"github.com/musecraft/musecraft/internal/webhook"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	// Optional; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("musecraft-api", cfg.LogLevel, os.Stdout)

	deps, cleanup, err := buildDeps(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, deps)
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

func buildDeps(cfg *config.Config, logger *logging.Logger) (server.Deps, func(), error) {
	deps := server.Deps{
		Logger:  logger,
		Metrics: metrics.New("musecraft-api"),
		Issuer:  auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps.Verifier = auth.NewGoogleVerifier(cfg.Auth.GoogleClientID, cfg.Auth.TokenInfoURL)

	if cfg.Generation.BaseURL != "" {
		deps.Gen = generation.NewHTTPService(cfg.Generation.BaseURL, cfg.Generation.Timeout)
		logger.Info().Str("url", cfg.Generation.BaseURL).Msg("using upstream generation service")
	} else {
		deps.Gen = generation.NewTemplateService()
		logger.Info().Msg("no generation URL configured, using built-in templates")
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return deps, cleanup, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup, continuing")
		}
		closers = append(closers, func() { _ = client.Close() })

		deps.Limiter = ratelimit.NewLimiter(
			ratelimit.NewRedisCounter(client), cfg.RateLimit.Limit, cfg.RateLimit.Window)
		deps.Ratings = feedback.NewStore(client)
		deps.RedisPing = server.NewRedisPing(client)
	} else {
		logger.Warn().Msg("no redis configured, rate limiting and ratings disabled")
	}

	if cfg.Database.URL != "" {
		db, err := storage.Open(cfg.Database.URL)
		if err != nil {
			return deps, cleanup, fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		deps.Prompts = storage.NewPromptRepository(db)
	} else {
		logger.Warn().Msg("no database configured, prompt persistence disabled")
	}

	if cfg.Webhook.URL != "" {
		deps.Notifier = webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, logger, deps.Metrics)
	}

	return deps, cleanup, nil
}
