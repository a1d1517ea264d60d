// Package ratelimit implements the worker's own backoff law: an action is
// permitted at most every MinInterval on success, and backs off quadratically
// towards MaxInterval on repeated failure.
package ratelimit

import "time"

// RateLimiter gates an action (status refresh, scene download, frame upload)
// to at most once per MinInterval on success, backing off on failure.
type RateLimiter struct {
	MinInterval time.Duration
	MaxInterval time.Duration
	MaxFailures int

	lastSuccess *time.Time
	lastFailure *time.Time
	failures    int
}

// Default returns a RateLimiter with the worker's stock tunables.
func Default() *RateLimiter {
	return &RateLimiter{
		MinInterval: 1 * time.Second,
		MaxInterval: 120 * time.Second,
		MaxFailures: 10,
	}
}

// New returns a RateLimiter with the given tunables.
func New(min, max time.Duration, maxFailures int) *RateLimiter {
	return &RateLimiter{MinInterval: min, MaxInterval: max, MaxFailures: maxFailures}
}

// ShouldRun reports whether the gated action may run at time now.
func (r *RateLimiter) ShouldRun(now time.Time) bool {
	switch {
	case r.lastSuccess == nil && r.lastFailure == nil:
		return true
	case r.lastSuccess != nil && r.lastFailure == nil:
		return !now.Before(r.lastSuccess.Add(r.MinInterval))
	case r.lastSuccess == nil && r.lastFailure != nil:
		return !now.Before(r.lastFailure.Add(r.backoff()))
	default:
		return false
	}
}

// backoff returns min + (max-min)*(failures/maxFailures)^2, the quadratic
// blend between MinInterval and MaxInterval as failures accrue.
func (r *RateLimiter) backoff() time.Duration {
	if r.MaxFailures <= 0 {
		return r.MaxInterval
	}
	factor := float64(r.failures) / float64(r.MaxFailures)
	factor *= factor
	span := float64(r.MaxInterval - r.MinInterval)
	return r.MinInterval + time.Duration(span*factor)
}

// NextBackOff satisfies the shape of github.com/cenkalti/backoff/v4's
// BackOff interface: the duration until ShouldRun would next return true,
// evaluated against time.Now(). Callers that need a context-overridable
// clock should use ShouldRun directly instead.
func (r *RateLimiter) NextBackOff() time.Duration {
	now := time.Now()
	switch {
	case r.lastSuccess == nil && r.lastFailure == nil:
		return 0
	case r.lastSuccess != nil && r.lastFailure == nil:
		if d := r.lastSuccess.Add(r.MinInterval).Sub(now); d > 0 {
			return d
		}
		return 0
	case r.lastFailure != nil:
		if d := r.lastFailure.Add(r.backoff()).Sub(now); d > 0 {
			return d
		}
		return 0
	default:
		return 0
	}
}

// Reset clears all recorded history, returning the limiter to its initial
// "never run" state.
func (r *RateLimiter) Reset() {
	r.lastSuccess = nil
	r.lastFailure = nil
	r.failures = 0
}

// OnSuccess records a successful run at now, resetting the failure count.
func (r *RateLimiter) OnSuccess(now time.Time) {
	t := now
	r.lastSuccess = &t
	r.lastFailure = nil
	r.failures = 0
}

// OnFailure records a failed run at now, incrementing the failure count
// (capped at MaxFailures).
func (r *RateLimiter) OnFailure(now time.Time) {
	t := now
	r.lastFailure = &t
	r.lastSuccess = nil
	if r.failures < r.MaxFailures {
		r.failures++
	}
}

// Failures returns the current consecutive-failure count.
func (r *RateLimiter) Failures() int {
	return r.failures
}
