// Package control wires the generation pipeline to its infrastructure:
// provider, storage, cache. It owns application lifecycle for the serve
// path.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/coach/internal/core/config"
	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/generation"
	"github.com/vietddude/coach/internal/generation/transform"
	"github.com/vietddude/coach/internal/infra/provider"
	redisclient "github.com/vietddude/coach/internal/infra/redis"
	"github.com/vietddude/coach/internal/infra/storage"
	"github.com/vietddude/coach/internal/infra/storage/memory"
	"github.com/vietddude/coach/internal/infra/storage/postgres"
)

// Config holds the application configuration.
type Config struct {
	Generator config.GeneratorConfig
	Redis     redisclient.Config
	Database  postgres.Config
	// Pacing overrides progress timing; zero values use production pacing.
	Pacing generation.Pacing
}

// Service coordinates generation requests against storage and cache. Each
// request gets its own orchestrator; the orchestrator's single-attempt
// discipline is a per-session concern, not a per-process one.
type Service struct {
	provider provider.Provider
	repo     storage.WorkoutRepository
	cache    *redisclient.Cache
	db       *postgres.DB
	log      *slog.Logger
	genCfg   config.GeneratorConfig
	pacing   generation.Pacing
}

// NewService creates a Service with all dependencies initialized. Postgres
// and Redis are optional; absent configuration falls back to in-memory
// storage and no cache.
func NewService(ctx context.Context, cfg Config, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}

	var repo storage.WorkoutRepository
	var db *postgres.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		repo = postgres.NewWorkoutRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		repo = memory.NewWorkoutRepo(cfg.Generator.HistoryLimit)
		log.Info("Using memory storage")
	}

	var cache *redisclient.Cache
	if cfg.Redis.URL != "" {
		var err error
		cache, err = redisclient.NewCache(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, caching disabled", "error", err)
		} else {
			log.Info("Workout cache enabled")
		}
	}

	p, err := buildProvider(cfg.Generator)
	if err != nil {
		return nil, err
	}
	if p == nil {
		log.Info("No generation provider configured; internal templates only")
	}

	return &Service{
		provider: p,
		repo:     repo,
		cache:    cache,
		db:       db,
		log:      log,
		genCfg:   cfg.Generator,
		pacing:   cfg.Pacing,
	}, nil
}

func buildProvider(cfg config.GeneratorConfig) (provider.Provider, error) {
	if cfg.Provider.URL == "" {
		return nil, nil
	}
	switch cfg.Provider.Kind {
	case "grpc":
		return provider.NewGRPCProvider(cfg.Provider)
	case "http", "":
		return provider.NewHTTPProvider(cfg.Provider, cfg.Timeout), nil
	}
	return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
}

// Options derives per-request generation options from the configured
// defaults.
func (s *Service) Options() generation.Options {
	opts := generation.DefaultOptions()
	if s.genCfg.Timeout > 0 {
		opts.Timeout = s.genCfg.Timeout
	}
	if s.genCfg.RetryAttempts > 0 {
		opts.RetryAttempts = s.genCfg.RetryAttempts
	}
	if s.genCfg.RetryDelay > 0 {
		opts.RetryDelay = s.genCfg.RetryDelay
	}
	if s.genCfg.UseExternalAI != nil {
		opts.UseExternalAI = *s.genCfg.UseExternalAI
	}
	if s.genCfg.UseFallback != nil {
		opts.UseFallback = *s.genCfg.UseFallback
	}
	return opts
}

// GenerateWorkout runs one generation attempt, consulting the cache first
// and persisting successful results. The returned snapshot carries the
// terminal orchestrator state either way.
func (s *Service) GenerateWorkout(ctx context.Context, req domain.GenerationRequest, opts generation.Options) (*domain.GeneratedWorkout, domain.GenerationSnapshot, error) {
	var key string
	if vars, err := transform.Canonicalize(req); err == nil {
		key = redisclient.Fingerprint(vars)
		if cached, cerr := s.cache.Get(ctx, key); cerr == nil && cached != nil {
			s.log.Debug("serving workout from cache", "id", cached.ID)
			return cached, domain.GenerationSnapshot{
				Status:        domain.StatusComplete,
				Progress:      100,
				Workout:       cached,
				LastGenerated: cached.GeneratedAt,
			}, nil
		}
	}

	orch := generation.New(generation.Config{Provider: s.provider, Logger: s.log, Pacing: s.pacing})
	workout, err := orch.Generate(ctx, req, opts)
	snap := orch.Snapshot()
	if err != nil {
		return nil, snap, err
	}

	if serr := s.repo.Save(ctx, workout); serr != nil {
		s.log.Warn("failed to persist workout", "id", workout.ID, "error", serr)
	}
	if cerr := s.cache.Set(ctx, key, workout); cerr != nil {
		s.log.Debug("failed to cache workout", "error", cerr)
	}
	return workout, snap, nil
}

// GetWorkout returns a stored workout by id.
func (s *Service) GetWorkout(ctx context.Context, id string) (*domain.GeneratedWorkout, error) {
	return s.repo.GetByID(ctx, id)
}

// ListWorkouts returns up to limit stored workouts, newest first.
func (s *Service) ListWorkouts(ctx context.Context, limit int) ([]*domain.GeneratedWorkout, error) {
	return s.repo.ListRecent(ctx, limit)
}

// ProviderReady reports external generator availability for health checks.
func (s *Service) ProviderReady(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Ready(ctx)
}

// Close releases infrastructure connections.
func (s *Service) Close() error {
	if err := s.cache.Close(); err != nil {
		s.log.Warn("Failed to close Redis", "error", err)
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
