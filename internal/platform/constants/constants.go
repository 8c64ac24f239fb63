// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and token lifetimes.
  - Content Limits: Comment and profile field bounds.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "personae-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often idle keys are evicted from memory stores.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a key must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "personae.app"

	// AdminTokenTTL is the lifetime of an admin access token.
	AdminTokenTTL = 12 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderUserAgent     = "User-Agent"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Content Limits

const (
	// CommentContentMaxLength bounds the comment body (Unicode characters).
	CommentContentMaxLength = 1000

	// CommentTitleMaxLength bounds the optional comment title.
	CommentTitleMaxLength = 100

	// CommentAuthorMaxLength bounds the display author name.
	CommentAuthorMaxLength = 50

	// CommentDefaultAuthor is used when no author is supplied.
	CommentDefaultAuthor = "Anonymous"

	// ProfileIDMin and ProfileIDMax bound externally assigned profile ids.
	ProfileIDMin = 1
	ProfileIDMax = 99999

	// ProfileNameMaxLength bounds the profile display name.
	ProfileNameMaxLength = 200

	// ProfileDescriptionMaxLength bounds the profile description.
	ProfileDescriptionMaxLength = 5000

	// ProfileCategoryMaxLength bounds the free-form profile category.
	ProfileCategoryMaxLength = 100

	// VoterAgentPrefixLength is how much of the User-Agent feeds the voter key.
	VoterAgentPrefixLength = 50

	// VoteHistoryLimit caps the vote history returned to an anonymous voter.
	VoteHistoryLimit = 100

	// TopCommentsDefaultLimit and TopCommentsMaxLimit bound the top-comments report.
	TopCommentsDefaultLimit = 10
	TopCommentsMaxLimit     = 50
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRateLimit = "ratelimit:"
	RedisPrefixStats     = "stats:"
)
