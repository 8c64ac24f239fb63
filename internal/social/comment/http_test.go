package comment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/social/comment"
)

func newRouter(f *fixture) http.Handler {
	handler := comment.NewHandler(f.service)
	router := chi.NewRouter()
	router.Route("/profiles/{profileId}/comments", handler.RegisterProfileRoutes)
	router.Route("/comments", func(r chi.Router) {
		handler.RegisterRoutes(r)
		handler.RegisterAdminRoutes(r)
	})
	return router
}

func TestHandler_CreateAndList(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/profiles/7/comments",
		strings.NewReader(`{"content":"Clearly a Sagittarius","author":"Bo"}`)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/profiles/7/comments?sort=best&filter=all&page=1&limit=10", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data struct {
			Comments []struct {
				Content    string         `json:"content"`
				Author     string         `json:"author"`
				VoteStats  map[string]any `json:"voteStats"`
				TotalVotes int            `json:"totalVotes"`
			} `json:"comments"`
			Pagination struct {
				TotalCount int `json:"totalCount"`
				Limit      int `json:"limit"`
			} `json:"pagination"`
			Filters struct {
				Sort   string `json:"sort"`
				Filter string `json:"filter"`
			} `json:"filters"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	require.Len(t, body.Data.Comments, 1)
	assert.Equal(t, "Clearly a Sagittarius", body.Data.Comments[0].Content)
	assert.Equal(t, "Bo", body.Data.Comments[0].Author)
	assert.Equal(t, 1, body.Data.Pagination.TotalCount)
	assert.Equal(t, 10, body.Data.Pagination.Limit)
	assert.Equal(t, "best", body.Data.Filters.Sort)
	assert.Equal(t, "all", body.Data.Filters.Filter)
	assert.NotContains(t, recorder.Body.String(), "isVisible")
}

func TestHandler_ListRejectsBadQuery(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	tests := []struct {
		query string
		field string
	}{
		{"page=0", "page"},
		{"page=abc", "page"},
		{"limit=51", "limit"},
		{"sort=random", "sort"},
		{"filter=tarot", "filter"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/comments?"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"field":"`+tt.field+`"`)
		})
	}
}

func TestHandler_GetAndDelete(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)
	created := f.post(t, 7, "to be moderated")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/comments/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/comments/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/comments/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/profiles/abc/comments", strings.NewReader(`{"content":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
