package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// fullQuota is the authenticated GitHub quota (requests per hour).
	fullQuota = 5000

	// throttleRate is the proactive ceiling, ~1.2 req/s (4320/hour),
	// leaving headroom under the hourly quota.
	throttleRate = 1.2

	// quotaFloor is the reserve kept for interactive use; once the
	// remaining quota drops below it, requests wait for the reset.
	quotaFloor = 100
)

// GitHub quota response headers (values in requests; reset in Unix seconds).
const (
	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// RateLimiter throttles GitHub API calls two ways: a token bucket
// smooths the request rate up front, and quota headers from each
// response drive a hard stop when the hourly allowance runs low.
type RateLimiter struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	remaining int
	limit     int
	resetAt   time.Time
}

// NewRateLimiter creates a limiter that assumes a full quota until the
// first response reports otherwise.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket:    rate.NewLimiter(rate.Limit(throttleRate), 1),
		remaining: fullQuota,
		limit:     fullQuota,
	}
}

// Wait blocks until a request may be sent: first the token bucket, then
// (if the quota reserve is exhausted) until the quota window resets.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	if pause := r.quotaPause(); pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// quotaPause returns how long to hold off when the remaining quota is
// below the reserve, zero when sending is fine.
func (r *RateLimiter) quotaPause() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remaining >= quotaFloor {
		return 0
	}
	until := time.Until(r.resetAt)
	if until <= 0 {
		return 0
	}
	return until
}

// UpdateFromResponse records the quota headers of an API response.
// Absent or malformed headers leave the previous state in place.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := headerInt(resp, headerRateRemaining); ok {
		r.remaining = v
	}
	if v, ok := headerInt(resp, headerRateLimit); ok {
		r.limit = v
	}
	if v, ok := headerInt(resp, headerRateReset); ok {
		r.resetAt = time.Unix(int64(v), 0)
	}
}

func headerInt(resp *http.Response, name string) (int, bool) {
	raw := resp.Header.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Remaining returns the last reported remaining quota.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the last reported quota limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns when the quota window resets.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}
