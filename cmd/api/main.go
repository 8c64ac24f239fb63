// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Personae HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open storage: PostgreSQL (pgxpool + migrations) or in-memory collections.
//  4. Connect to Redis when configured.
//  5. Build rate limiters, caches and the admin token service.
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/personae/internal/api"
	"github.com/taibuivan/personae/internal/core/profile"
	"github.com/taibuivan/personae/internal/platform/config"
	"github.com/taibuivan/personae/internal/platform/constants"
	"github.com/taibuivan/personae/internal/platform/metrics"
	"github.com/taibuivan/personae/internal/platform/middleware"
	"github.com/taibuivan/personae/internal/platform/migration"
	pgstore "github.com/taibuivan/personae/internal/platform/postgres"
	"github.com/taibuivan/personae/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/personae/internal/platform/redis"
	"github.com/taibuivan/personae/internal/platform/sec"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/stats"
	"github.com/taibuivan/personae/internal/social/vote"
	"github.com/taibuivan/personae/internal/users/auth"
)

// repositories bundles the storage backends chosen at startup.
type repositories struct {
	profiles profile.Repository
	comments comment.Repository
	votes    vote.Repository
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("redis", cfg.UsesRedis()),
		slog.Bool("admin", cfg.AdminEnabled()),
	)

	// Background workers (limiter janitors) stop with this context.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	health := api.HealthDependencies{StorageDriver: cfg.StorageDriver}

	// ── 3. Storage ────────────────────────────────────────────────────────
	var repos repositories
	if cfg.UsesPostgres() {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		repos = repositories{
			profiles: profile.NewPostgresRepository(pool),
			comments: comment.NewPostgresRepository(pool),
			votes:    vote.NewPostgresRepository(pool, log),
		}
		health.Checks = append(health.Checks, api.ReadinessCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		})
	} else {
		comments := comment.NewMemoryRepository()
		repos = repositories{
			profiles: profile.NewMemoryRepository(),
			comments: comments,
			votes:    vote.NewMemoryRepository(comments, log),
		}
		log.Warn("memory_storage_enabled", slog.String("reason", "data is lost on restart"))
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		health.Checks = append(health.Checks, api.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	}

	// ── 5. Limiters, Caches, Metrics ──────────────────────────────────────
	registry := metrics.New()

	httpPolicy := ratelimit.Policy{
		Limit:  constants.DefaultRateLimitBurst,
		Window: time.Second * constants.DefaultRateLimitBurst / constants.DefaultRateLimitRPS,
	}
	votePolicy := ratelimit.Policy{Limit: cfg.VoteRateLimit, Window: cfg.VoteRateWindow}
	loginPolicy := ratelimit.Policy{Limit: cfg.LoginMaxAttempts, Window: cfg.LoginLockoutWindow}

	httpLimiter := newLimiter(appCtx, rdb, "http", httpPolicy, constants.RateLimitClientTTL)
	voteLimiter := newLimiter(appCtx, rdb, "vote", votePolicy, cfg.VoteRateWindow)
	loginLimiter := newLimiter(appCtx, rdb, "login", loginPolicy, cfg.LoginLockoutWindow)

	var statsCache stats.Cache
	if rdb != nil {
		statsCache = redisstore.NewJSONCache(rdb, constants.RedisPrefixStats, cfg.StatsCacheTTL)
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	profileService := profile.NewService(repos.profiles, repos.comments, log)
	commentService := comment.NewService(repos.comments, profileService, registry, log, cfg.CommentPageMaxLimit)
	voteService := vote.NewService(repos.votes, commentService, log, vote.Options{
		Limiter:        voteLimiter,
		Metrics:        registry,
		MaxValueLength: cfg.VoteValueMaxLength,
	})
	statsService := stats.NewService(commentService, statsCache, log)

	liveness, readiness := api.NewHealthHandlers(health, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Profile:   profile.NewHandler(profileService),
		Comment:   comment.NewHandler(commentService),
		Vote:      vote.NewHandler(voteService),
		Stats:     stats.NewHandler(statsService),
	}
	options := api.Options{Limiter: httpLimiter, Metrics: registry}

	// ── 7. Admin Surface ──────────────────────────────────────────────────
	if cfg.AdminEnabled() {
		tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, err, "initialize jwt service")

		credentials := auth.Credentials{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash}
		if !credentials.Enabled() {
			log.Warn("admin_login_disabled", slog.String("reason", "ADMIN_PASSWORD_HASH is empty"))
		} else {
			must(log, sec.ValidateHash(credentials.PasswordHash), "validate admin password hash")
		}

		authService := auth.NewService(credentials, tokenService, loginLimiter, constants.AdminTokenTTL, log)
		handlers.Auth = auth.NewHandler(authService)
		options.Verifier = middleware.TokenVerifier(tokenService)
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, options, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLimiter returns a Redis-backed store shared by every instance when Redis
// is configured, and a process-local store otherwise.
func newLimiter(ctx context.Context, rdb *goredis.Client, namespace string, policy ratelimit.Policy, idleTTL time.Duration) ratelimit.Store {
	if rdb != nil {
		return ratelimit.NewRedisStore(rdb, namespace, policy)
	}
	return ratelimit.NewMemoryStore(ctx, policy, max(idleTTL, policy.Window), constants.RateLimitCleanupInterval)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
