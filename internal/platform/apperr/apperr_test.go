// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/platform/apperr"
)

/*
TestKind_Status verifies the boundary mapping for every error kind.
*/
func TestKind_Status(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
	}{
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest},
		{"not_found", apperr.NotFound("Comment"), http.StatusNotFound},
		{"duplicate_vote", apperr.DuplicateVote("c1", "mbti"), http.StatusConflict},
		{"unauthorized", apperr.Unauthorized("nope"), http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden},
		{"rate_limited", apperr.RateLimited(10), http.StatusTooManyRequests},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}

/*
TestNotFoundID keeps the resource and identifier for logging.
*/
func TestNotFoundID(t *testing.T) {
	err := apperr.NotFoundID("Comment", "abc")

	assert.Equal(t, apperr.KindNotFound, err.Kind)
	assert.Equal(t, "Comment", err.Resource)
	assert.Equal(t, "abc", err.ResourceID)
	assert.Equal(t, "Comment not found", err.Error())
}

/*
TestAs_WrappedChain extracts an AppError through fmt.Errorf wrapping.
*/
func TestAs_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("vote store: %w", apperr.DuplicateVote("c1", "zodiac"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "DUPLICATE_VOTE", ae.Code)
	assert.True(t, apperr.IsKind(wrapped, apperr.KindConflict))
	assert.False(t, apperr.IsKind(errors.New("plain"), apperr.KindConflict))
}

/*
TestInternal_HidesCause ensures the cause never becomes the client message.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "relation")
	assert.ErrorIs(t, err, cause)
}
