// Package server wires the HTTP API: routes, middleware chain and the
// background maintenance job.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"

	"github.com/musecraft/musecraft/internal/auth"
	"github.com/musecraft/musecraft/internal/config"
	"github.com/musecraft/musecraft/internal/generation"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/logging"
	"github.com/musecraft/musecraft/internal/metrics"
	"github.com/musecraft/musecraft/internal/middleware"
	"github.com/musecraft/musecraft/internal/ratelimit"
	"github.com/musecraft/musecraft/internal/storage"
	"github.com/musecraft/musecraft/internal/webhook"
)

// PromptStore persists and lists generated prompts.
type PromptStore interface {
	Save(ctx context.Context, p *storage.SavedPrompt) error
	ListByUser(ctx context.Context, userID string, limit int) ([]storage.SavedPrompt, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// RatingStore records prompt ratings.
type RatingStore interface {
	Save(ctx context.Context, promptID, userID string, rating int) error
}

// Deps are the collaborators the server composes. Prompts, Ratings and
// Redis may be nil; the matching features degrade gracefully.
type Deps struct {
	Logger    *logging.Logger
	Metrics   *metrics.Metrics
	Gen       generation.Service
	Prompts   PromptStore
	Ratings   RatingStore
	Limiter   *ratelimit.Limiter
	Notifier  *webhook.Notifier
	Verifier  CredentialVerifier
	Issuer    *auth.TokenIssuer
	RedisPing func(ctx context.Context) error
}

// CredentialVerifier validates an external sign-in credential.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (auth.User, error)
}

// Server is the API server.
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *metrics.Metrics
	gen      generation.Service
	prompts  PromptStore
	ratings  RatingStore
	notifier *webhook.Notifier
	verifier CredentialVerifier
	issuer   *auth.TokenIssuer

	authMW  *middleware.AuthMiddleware
	rate    *middleware.RateLimiter
	ipLimit *middleware.IPLimiter
	redis   func(ctx context.Context) error
	router  *mux.Router
	cron    *cron.Cron
}

// New builds the server and its routes.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		gen:      deps.Gen,
		prompts:  deps.Prompts,
		ratings:  deps.Ratings,
		notifier: deps.Notifier,
		verifier: deps.Verifier,
		issuer:   deps.Issuer,
		redis:    deps.RedisPing,
		authMW:   middleware.NewAuthMiddleware(deps.Issuer, deps.Logger),
		rate:     middleware.NewRateLimiter(deps.Limiter, deps.Logger, deps.Metrics),
		ipLimit:  middleware.NewIPLimiter(1, 5),
		cron:     cron.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()

	r.Use(mux.MiddlewareFunc(middleware.NewCORSMiddleware(s.cfg.Server.AllowedOrigins).Handler))
	r.Use(middleware.Logging(s.logger))
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/auth/google",
		s.ipLimit.Handler(http.HandlerFunc(s.handleGoogleLogin))).Methods(http.MethodPost)
	api.Handle("/user/profile",
		s.authMW.Require(http.HandlerFunc(s.handleProfile))).Methods(http.MethodGet)

	// Generation endpoints: identity attached when present. The windowed
	// limit is checked inside each handler once validation has passed.
	gen := func(h http.HandlerFunc) http.Handler {
		return s.authMW.Optional(h)
	}
	api.Handle("/prompts", gen(s.handleGeneratePrompt)).Methods(http.MethodPost)
	api.Handle("/writing/feedback", gen(s.handleWritingFeedback)).Methods(http.MethodPost)
	api.Handle("/drawing/feedback", gen(s.handleDrawingFeedback)).Methods(http.MethodPost)
	api.Handle("/sounddesign/generate", gen(s.handleSoundDesign)).Methods(http.MethodPost)
	api.Handle("/chords/generate", gen(s.handleChordProgression)).Methods(http.MethodPost)

	api.Handle("/prompts/feedback",
		s.authMW.Optional(http.HandlerFunc(s.handleRatePrompt))).Methods(http.MethodPost)
	api.Handle("/prompts/saved",
		s.authMW.Require(http.HandlerFunc(s.handleListSaved))).Methods(http.MethodGet)

	s.router = r
}

// Router exposes the configured router.
func (s *Server) Router() http.Handler { return s.router }

// Run starts the maintenance cron and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.prompts != nil && s.cfg.Retention.Schedule != "" {
		_, err := s.cron.AddFunc(s.cfg.Retention.Schedule, s.cleanupSavedPrompts)
		if err != nil {
			return fmt.Errorf("schedule retention job: %w", err)
		}
		s.cron.Start()
		defer s.cron.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.cfg.Server.Port).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if s.notifier != nil {
			s.notifier.Wait()
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// cleanupSavedPrompts deletes prompts past the retention age. Failures are
// logged and the next run tries again.
func (s *Server) cleanupSavedPrompts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.cfg.Retention.MaxAgeDays)
	deleted, err := s.prompts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn().Err(err).Msg("prompt retention cleanup failed")
		return
	}
	s.logger.Info().Int64("deleted", deleted).Msg("prompt retention cleanup complete")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":    "healthy",
		"service":   "musecraft-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	healthy := true

	if s.redis != nil {
		if err := s.redis(r.Context()); err != nil {
			status["redis"] = "unreachable"
			healthy = false
		} else {
			status["redis"] = "ok"
		}
	}
	if s.prompts != nil {
		if err := s.prompts.Ping(r.Context()); err != nil {
			status["database"] = "unreachable"
			healthy = false
		} else {
			status["database"] = "ok"
		}
	}

	code := http.StatusOK
	if !healthy {
		status["status"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, status)
}

// NewRedisPing adapts a redis client into the health-check dependency.
func NewRedisPing(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
