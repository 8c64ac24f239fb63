// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/personae/internal/core/profile"
	"github.com/taibuivan/personae/internal/platform/config"
	"github.com/taibuivan/personae/internal/platform/constants"
	"github.com/taibuivan/personae/internal/platform/metrics"
	"github.com/taibuivan/personae/internal/platform/middleware"
	"github.com/taibuivan/personae/internal/platform/ratelimit"
	"github.com/taibuivan/personae/internal/platform/sec"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/stats"
	"github.com/taibuivan/personae/internal/social/vote"
	"github.com/taibuivan/personae/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler and always returns 200 while the process is up.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler and returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles admin login. Nil when the admin surface is disabled.
	Auth *auth.Handler

	Profile *profile.Handler
	Comment *comment.Handler
	Vote    *vote.Handler
	Stats   *stats.Handler
}

// Options carries the cross-cutting collaborators of the router.
type Options struct {
	// Verifier checks admin tokens. Nil leaves every admin route unmounted.
	Verifier middleware.TokenVerifier

	// Limiter bounds requests per client address.
	Limiter ratelimit.Store

	Metrics *metrics.Registry
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, options Options, h Handlers) *Server {
	r := NewRouter(cfg, log, options, h)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the routing tree. It is separate from [NewServer] so tests
// can drive it with httptest.
func NewRouter(cfg *config.Config, log *slog.Logger, options Options, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	adminEnabled := options.Verifier != nil

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	if options.Metrics != nil {
		r.Use(options.Metrics.Middleware)
	}
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.CORS(cfg))
	if options.Limiter != nil {
		r.Use(middleware.RateLimit(options.Limiter, "http", options.Metrics))
	}
	r.Use(middleware.VoterIdentity(vote.Identify))
	if adminEnabled {
		r.Use(middleware.Authenticate(options.Verifier))
	}
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health endpoints for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if options.Metrics != nil {
		r.Handle("/metrics", options.Metrics.Handler())
	}

	adminOnly := middleware.RequireRole(sec.RoleAdmin)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		if adminEnabled && h.Auth != nil {
			api.Mount("/auth", h.Auth.Routes())
		}

		api.Route("/profiles", func(profiles chi.Router) {
			h.Profile.RegisterRoutes(profiles)
			profiles.Route("/{profileId}/comments", h.Comment.RegisterProfileRoutes)

			if adminEnabled {
				profiles.With(adminOnly).Group(h.Profile.RegisterAdminRoutes)
			}
		})

		api.Route("/comments", func(comments chi.Router) {
			h.Comment.RegisterRoutes(comments)
			comments.Route("/{commentId}/votes", h.Vote.RegisterCommentRoutes)
			comments.Route("/{commentId}/stats", h.Stats.RegisterCommentRoutes)

			if adminEnabled {
				comments.With(adminOnly).Group(h.Comment.RegisterAdminRoutes)
			}
		})

		api.Route("/votes", h.Vote.RegisterVoterRoutes)
		api.Route("/stats", h.Stats.RegisterRoutes)
	})

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
