package sync

import (
	"log"
	"net/http"
	"time"
)

const (
	// Rate limit metadata headers present on BoldDesk responses.
	HeaderRateLimit     = "x-rate-limit-limit"
	HeaderRateRemaining = "x-rate-limit-remaining"
	HeaderRateReset     = "x-rate-limit-reset"

	// ResetBuffer is added to the server-declared reset time so a retry
	// never lands exactly on the boundary.
	ResetBuffer = 2 * time.Second

	// MaxFetchAttempts bounds the total attempts for a single page under
	// sustained rate limiting or transient network failure.
	MaxFetchAttempts = 5
)

// RateLimitState is the rate limit metadata from a single response. It is
// never persisted - it lives only for the retry attempt that produced it.
type RateLimitState struct {
	Limit     string
	Remaining string
	Reset     string // ISO-8601 UTC instant, e.g. 2024-06-01T00:05:00Z
}

// ParseRateLimitState reads the rate limit headers from a response.
func ParseRateLimitState(headers http.Header) RateLimitState {
	return RateLimitState{
		Limit:     headers.Get(HeaderRateLimit),
		Remaining: headers.Get(HeaderRateRemaining),
		Reset:     headers.Get(HeaderRateReset),
	}
}

// BackoffPolicy computes how long to wait before retrying a rate limited
// request. Now is overridable in tests and defaults to time.Now.
type BackoffPolicy struct {
	Buffer time.Duration
	Now    func() time.Time
}

// NewBackoffPolicy returns the default policy with a 2 second buffer.
func NewBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{Buffer: ResetBuffer, Now: time.Now}
}

// DelayBeforeRetry returns the wait derived from the server-declared reset
// time. A zero result signals the caller to fall back to the generic
// exponential schedule - the reset header was absent, unparsable, or the
// reset time has already passed.
func (p BackoffPolicy) DelayBeforeRetry(state RateLimitState) time.Duration {
	log.Printf("BoldDesk rate limit: limit=%s remaining=%s reset=%s",
		state.Limit, state.Remaining, state.Reset)
	if state.Reset == "" {
		return 0
	}
	reset, err := time.Parse(time.RFC3339, state.Reset)
	if err != nil {
		log.Printf("Warning: unparsable rate limit reset %q, falling back to exponential backoff", state.Reset)
		return 0
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	delay := reset.Sub(now()) + p.Buffer
	if delay < 0 {
		return 0
	}
	return delay
}

// FallbackDelay is the generic exponential backoff schedule used when no
// server-declared reset time is available: 1s, 2s, 4s, 8s for attempts 1-4.
func FallbackDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}
