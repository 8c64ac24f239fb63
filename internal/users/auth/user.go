// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth authenticates the platform administrator.

Voters are anonymous and never log in. The single admin account is configured
through the environment (username and bcrypt hash) and exchanges its
credentials for a short-lived RS256 access token carrying the admin role.

Failed attempts are counted per client address in an injected
[ratelimit.Store]; once the budget is spent further attempts are rejected until
the lockout window passes. A successful login clears the counter.
*/
package auth

import (
	"time"

	"github.com/taibuivan/personae/internal/platform/sec"
)

// # Domain Entities

// Credentials is the configured admin identity.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Enabled reports whether an admin password has been configured.
func (c Credentials) Enabled() bool {
	return c.Username != "" && c.PasswordHash != ""
}

// Token is an issued access token.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Role        sec.UserRole `json:"role"`
}

// # Field Identifiers

// Global field names for validation in the authentication domain.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// adminUserID is the subject of every admin token.
const adminUserID = "admin"
