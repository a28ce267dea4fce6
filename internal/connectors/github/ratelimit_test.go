package github

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func quotaResponse(remaining, limit int, reset time.Time) *http.Response {
	h := http.Header{}
	h.Set(headerRateRemaining, strconv.Itoa(remaining))
	h.Set(headerRateLimit, strconv.Itoa(limit))
	h.Set(headerRateReset, strconv.FormatInt(reset.Unix(), 10))
	return &http.Response{Header: h}
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter()
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	r.UpdateFromResponse(quotaResponse(4200, 5000, reset))

	if r.Remaining() != 4200 {
		t.Errorf("expected remaining 4200, got %d", r.Remaining())
	}
	if r.Limit() != 5000 {
		t.Errorf("expected limit 5000, got %d", r.Limit())
	}
	if !r.ResetTime().Equal(reset) {
		t.Errorf("expected reset %v, got %v", reset, r.ResetTime())
	}
}

func TestRateLimiter_MalformedHeadersKeepState(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set(headerRateRemaining, "not-a-number")
	r.UpdateFromResponse(&http.Response{Header: h})

	if r.Remaining() != fullQuota {
		t.Errorf("malformed header should not change state, got %d", r.Remaining())
	}

	r.UpdateFromResponse(nil)
	if r.Remaining() != fullQuota {
		t.Errorf("nil response should not change state, got %d", r.Remaining())
	}
}

func TestRateLimiter_QuotaPause(t *testing.T) {
	r := NewRateLimiter()

	if pause := r.quotaPause(); pause != 0 {
		t.Errorf("full quota should not pause, got %v", pause)
	}

	// Below the reserve with the window still open: hold until reset.
	r.UpdateFromResponse(quotaResponse(5, 5000, time.Now().Add(10*time.Minute)))
	if pause := r.quotaPause(); pause <= 0 {
		t.Errorf("exhausted quota should pause until reset, got %v", pause)
	}

	// Below the reserve but the window already reset: send immediately.
	r.UpdateFromResponse(quotaResponse(5, 5000, time.Now().Add(-time.Minute)))
	if pause := r.quotaPause(); pause != 0 {
		t.Errorf("expired window should not pause, got %v", pause)
	}
}
