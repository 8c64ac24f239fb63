// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the API.

Every collector hangs off a [Registry] instance rather than the global default
registerer, so tests can build isolated registries and the server exposes
exactly what it registered on /metrics.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "personae"

// Vote outcomes recorded by [Registry.ObserveVote].
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeRemoved   = "removed"
	OutcomeRejected  = "rejected"
)

// Registry owns the collectors of one API process.
type Registry struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	votes           *prometheus.CounterVec
	commentsCreated prometheus.Counter
	commentsDeleted prometheus.Counter
	rateLimited     *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors attached.
func New() *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Registry{
		registry: registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote submissions and removals by personality system and outcome.",
		}, []string{"system", "outcome"}),

		commentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Comments accepted.",
		}),

		commentsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_deleted_total",
			Help:      "Comments hidden by moderators.",
		}),

		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limiter, by scope.",
		}, []string{"scope"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (registry *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(registry.registry, promhttp.HandlerOpts{Registry: registry.registry})
}

// Gatherer exposes the underlying registry for tests.
func (registry *Registry) Gatherer() prometheus.Gatherer {
	return registry.registry
}

// ObserveVote counts a vote event. A nil registry is a no-op.
func (registry *Registry) ObserveVote(system, outcome string) {
	if registry == nil {
		return
	}
	registry.votes.WithLabelValues(system, outcome).Inc()
}

// CommentCreated counts an accepted comment. A nil registry is a no-op.
func (registry *Registry) CommentCreated() {
	if registry == nil {
		return
	}
	registry.commentsCreated.Inc()
}

// CommentDeleted counts a moderated comment. A nil registry is a no-op.
func (registry *Registry) CommentDeleted() {
	if registry == nil {
		return
	}
	registry.commentsDeleted.Inc()
}

// RateLimited counts a rejection in scope. A nil registry is a no-op.
func (registry *Registry) RateLimited(scope string) {
	if registry == nil {
		return
	}
	registry.rateLimited.WithLabelValues(scope).Inc()
}

// # HTTP Instrumentation

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (writer *statusWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by chi route pattern,
// so path parameters never explode label cardinality.
func (registry *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		recorder := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		registry.httpRequests.WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).Inc()
		registry.httpDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}
