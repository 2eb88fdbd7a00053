package furnilytics

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	internalbackoff "github.com/Furnilytics/Furnilytics-lib/internal/backoff"
)

// DefaultRetryPolicy retries transient outcomes (connection failures, HTTP
// 429 and 5xx) up to maxRetries times, honoring Retry-After when the server
// provides it and falling back to the configured backoff strategy.
type DefaultRetryPolicy struct {
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
	jitter            float64
	backoffStrategy   BackoffStrategy
	backoffCalculator *internalbackoff.Calculator
	isIdempotent      func(method string) bool
}

// NewDefaultRetryPolicy creates a retry policy using exponential backoff
// with jitter that only retries idempotent methods.
func NewDefaultRetryPolicy(maxRetries int, initialBackoff, maxBackoff time.Duration, multiplier, jitter float64) *DefaultRetryPolicy {
	policy := &DefaultRetryPolicy{
		maxRetries:        maxRetries,
		initialBackoff:    initialBackoff,
		maxBackoff:        maxBackoff,
		backoffMultiplier: multiplier,
		jitter:            jitter,
		backoffStrategy:   ExponentialJitter,
		isIdempotent:      DefaultIsIdempotent,
	}
	policy.backoffCalculator = internalbackoff.GetExponentialJitterCalculator()
	return policy
}

// NewDefaultRetryPolicyWithStrategy creates a retry policy with a specific backoff strategy.
func NewDefaultRetryPolicyWithStrategy(maxRetries int, initialBackoff, maxBackoff time.Duration, multiplier, jitter float64, strategy BackoffStrategy) *DefaultRetryPolicy {
	policy := &DefaultRetryPolicy{
		maxRetries:        maxRetries,
		initialBackoff:    initialBackoff,
		maxBackoff:        maxBackoff,
		backoffMultiplier: multiplier,
		jitter:            jitter,
		backoffStrategy:   strategy,
		isIdempotent:      DefaultIsIdempotent,
	}

	switch strategy {
	case DecorrelatedJitter:
		policy.backoffCalculator = internalbackoff.GetDecorrelatedJitterCalculator()
	default:
		policy.backoffCalculator = internalbackoff.GetExponentialJitterCalculator()
	}

	return policy
}

// ShouldRetry implements the RetryPolicy interface.
func (p *DefaultRetryPolicy) ShouldRetry(resp *http.Response, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.maxRetries {
		return 0, false
	}

	// Non-idempotent methods are never replayed.
	if resp != nil && resp.Request != nil && !p.isIdempotent(resp.Request.Method) {
		return 0, false
	}

	shouldRetry := false
	var delay time.Duration

	if err != nil {
		// Connection-level failures are treated like 5xx: transient.
		shouldRetry = true
	} else if resp != nil {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			shouldRetry = true
			// Retry-After, when present, overrides the computed backoff.
			delay = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
	}

	if !shouldRetry {
		return 0, false
	}

	if delay == 0 {
		delay = p.calculateBackoff(attempt)
	}

	return delay, true
}

// DefaultIsIdempotent returns true for idempotent HTTP methods.
func DefaultIsIdempotent(method string) bool {
	switch method {
	case "GET", "HEAD", "PUT", "DELETE", "OPTIONS":
		return true
	default:
		return false
	}
}

// parseRetryAfter parses a Retry-After header value in either delay-seconds
// or HTTP-date form. The resulting delay is capped at one hour; unparsable
// or non-positive values return 0.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds > 0 {
			delay := time.Duration(seconds) * time.Second
			if delay > time.Hour {
				delay = time.Hour
			}
			return delay
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= time.Hour {
			return delay
		}
	}

	return 0
}

func (p *DefaultRetryPolicy) calculateBackoff(attempt int) time.Duration {
	if p.backoffCalculator == nil {
		p.backoffCalculator = internalbackoff.GetExponentialJitterCalculator()
	}
	return p.backoffCalculator.Calculate(attempt, p.initialBackoff, p.maxBackoff, p.backoffMultiplier, p.jitter)
}

// RetryBudget bounds the number of retries issued across all calls within a
// sliding window, guarding against retry storms when the API degrades.
type RetryBudget struct {
	maxRetries  int64
	perWindow   time.Duration
	current     int64
	windowStart int64
}

// NewRetryBudget creates a retry budget allowing maxRetries retries per window.
func NewRetryBudget(maxRetries int, perWindow time.Duration) *RetryBudget {
	return &RetryBudget{
		maxRetries:  int64(maxRetries),
		perWindow:   perWindow,
		current:     0,
		windowStart: time.Now().UnixNano(),
	}
}

// Allow checks if a retry is allowed under the current budget.
func (rb *RetryBudget) Allow() bool {
	now := time.Now().UnixNano()
	windowStart := atomic.LoadInt64(&rb.windowStart)

	if now-windowStart >= int64(rb.perWindow) {
		if atomic.CompareAndSwapInt64(&rb.windowStart, windowStart, now) {
			atomic.StoreInt64(&rb.current, 0)
		}
	}

	current := atomic.LoadInt64(&rb.current)
	if current >= rb.maxRetries {
		return false
	}

	newCurrent := atomic.AddInt64(&rb.current, 1)
	return newCurrent <= rb.maxRetries
}

// GetStats returns current retry budget statistics.
func (rb *RetryBudget) GetStats() (current, max int64, windowStart time.Time) {
	return atomic.LoadInt64(&rb.current),
		rb.maxRetries,
		time.Unix(0, atomic.LoadInt64(&rb.windowStart))
}
