// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/api"
	"github.com/taibuivan/personae/internal/core/profile"
	"github.com/taibuivan/personae/internal/platform/config"
	"github.com/taibuivan/personae/internal/platform/metrics"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/stats"
	"github.com/taibuivan/personae/internal/social/vote"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := metrics.New()

	commentRepo := comment.NewMemoryRepository()
	profiles := profile.NewService(profile.NewMemoryRepository(), commentRepo, logger)
	require.NoError(t, profiles.Create(context.Background(), &profile.Profile{ID: 1, Name: "Ada Lovelace"}))

	comments := comment.NewService(commentRepo, profiles, registry, logger, 50)
	votes := vote.NewService(vote.NewMemoryRepository(commentRepo, logger), comments, logger, vote.Options{MaxValueLength: 32})

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, logger)

	return api.NewRouter(&config.Config{Environment: "development"}, logger, api.Options{Metrics: registry}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Profile:   profile.NewHandler(profiles),
		Comment:   comment.NewHandler(comments),
		Vote:      vote.NewHandler(votes),
		Stats:     stats.NewHandler(stats.NewService(comments, nil, logger)),
	})
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.RemoteAddr = "198.51.100.4:4000"
	request.Header.Set("User-Agent", "router-test")
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ready", "").Code)

	metricsResponse := serve(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsResponse.Code)
	assert.Contains(t, metricsResponse.Body.String(), "personae_http_requests_total")
}

func TestRouter_CommentVoteFlow(t *testing.T) {
	router := newTestRouter(t)

	created := serve(router, http.MethodPost, "/api/v1/profiles/1/comments", `{"content":"hello"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &envelope))
	id := envelope.Data.ID
	require.NotEmpty(t, id)

	first := serve(router, http.MethodPost, "/api/v1/comments/"+id+"/votes", `{"personalitySystem":"mbti","personalityValue":"intj"}`)
	assert.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	again := serve(router, http.MethodPost, "/api/v1/comments/"+id+"/votes", `{"personalitySystem":"mbti","personalityValue":"ENTP"}`)
	assert.Equal(t, http.StatusOK, again.Code, again.Body.String())

	commentStats := serve(router, http.MethodGet, "/api/v1/comments/"+id+"/stats", "")
	require.Equal(t, http.StatusOK, commentStats.Code)
	assert.Contains(t, commentStats.Body.String(), `"totalVotes":1`)
	assert.Contains(t, commentStats.Body.String(), `"ENTP":1`)

	mine := serve(router, http.MethodGet, "/api/v1/votes/mine", "")
	require.Equal(t, http.StatusOK, mine.Code)
	assert.Contains(t, mine.Body.String(), `"personalityValue":"ENTP"`)

	listing := serve(router, http.MethodGet, "/api/v1/profiles/1/comments?sort=best", "")
	require.Equal(t, http.StatusOK, listing.Code)
	assert.Contains(t, listing.Body.String(), `"totalCount":1`)
}

func TestRouter_AdminRoutesNeedVerifier(t *testing.T) {
	router := newTestRouter(t)

	created := serve(router, http.MethodPost, "/api/v1/profiles/1/comments", `{"content":"keep me"}`)
	require.Equal(t, http.StatusCreated, created.Code)

	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &envelope))

	deleted := serve(router, http.MethodDelete, "/api/v1/comments/"+envelope.Data.ID, "")
	assert.Equal(t, http.StatusMethodNotAllowed, deleted.Code)

	login := serve(router, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"x"}`)
	assert.Equal(t, http.StatusNotFound, login.Code)

	still := serve(router, http.MethodGet, "/api/v1/comments/"+envelope.Data.ID, "")
	assert.Equal(t, http.StatusOK, still.Code)
}

func TestReadiness_DegradesOnFailingCheck(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		StorageDriver: "postgres",
		Checks: []api.ReadinessCheck{
			{Name: "postgres", Check: func(context.Context) error { return nil }},
			{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		},
	}, logger)

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
	assert.Contains(t, recorder.Body.String(), "connection refused")

	recorder = httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"storage":"postgres"`)
}
