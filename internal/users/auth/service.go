// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/ratelimit"
	"github.com/taibuivan/personae/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username string, role sec.UserRole, timeToLive time.Duration) (string, time.Time, error)
}

// Service implements admin authentication.
type Service struct {
	credentials Credentials
	tokens      TokenProvider
	attempts    ratelimit.Store
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewService constructs the admin authenticator. attempts counts login
// attempts per client and must be configured with the lockout policy.
func NewService(credentials Credentials, tokens TokenProvider, attempts ratelimit.Store, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		tokens:      tokens,
		attempts:    attempts,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

/*
Login validates the admin credentials and issues an access token.

Description: every attempt spends one unit of the client's budget before the
password is checked, so a locked-out client learns nothing about the
credentials. Success resets the budget.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Token: Signed admin token
  - err: RateLimited, Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Token, error) {
	decision, err := service.attempts.Allow(context, input.ClientIP)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Login is temporarily unavailable")
	}
	if !decision.Allowed {
		service.logger.WarnContext(context, "admin_login_locked", slog.String("ip", input.ClientIP))
		return nil, apperr.RateLimited(decision.RetryAfterSeconds())
	}

	if !service.credentials.Enabled() || !service.matches(input) {
		service.logger.WarnContext(context, "admin_login_failed",
			slog.String("ip", input.ClientIP),
			slog.Int("remaining_attempts", decision.Remaining),
		)
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if err := service.attempts.Reset(context, input.ClientIP); err != nil {
		service.logger.WarnContext(context, "admin_login_reset_failed", slog.Any("error", err))
	}

	accessToken, expiresAt, err := service.tokens.GenerateAccessToken(adminUserID, service.credentials.Username, sec.RoleAdmin, service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "admin_login_succeeded", slog.String("ip", input.ClientIP))

	return &Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(service.tokenTTL.Seconds()),
		ExpiresAt:   expiresAt,
		Role:        sec.RoleAdmin,
	}, nil
}

// matches compares the username in constant time and the password with bcrypt.
func (service *Service) matches(input LoginInput) bool {
	username := strings.TrimSpace(input.Username)
	sameUser := subtle.ConstantTimeCompare([]byte(username), []byte(service.credentials.Username)) == 1
	samePassword := sec.CheckPasswordHash(input.Password, service.credentials.PasswordHash)
	return sameUser && samePassword
}
