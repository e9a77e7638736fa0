// Package ratelimit provides request rate limiting.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimitExceeded is returned when the rate limit is exceeded.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Result is the outcome of a single rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int           // requests left in the current window
	ResetAfter time.Duration // until the oldest recorded request expires
	RetryAfter time.Duration // suggested wait when blocked, zero otherwise
	Limit      int
}

// Limiter is the rate limiting interface. Identifiers are opaque; the HTTP
// layer keys on client IP or API key.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (*Result, error)
	Reset(ctx context.Context, identifier string) error
	Close() error
}

// Config holds limiter configuration.
type Config struct {
	Requests int
	Window   time.Duration
}

// DefaultConfig returns 100 requests per minute.
func DefaultConfig() Config {
	return Config{
		Requests: 100,
		Window:   time.Minute,
	}
}
