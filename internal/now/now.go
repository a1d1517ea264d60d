// Package now provides a context-overridable source of the current time, so
// that rate limiting, heartbeat scheduling, and scene-file aging can be
// exercised deterministically in tests without sleeping on the wall clock.
package now

import (
	"context"
	"time"
)

type contextKeyType string

// ContextKey is the context.Context key under which a time.Time or a
// NowProvider may be stashed to override Now.
const ContextKey contextKeyType = "now.ContextKey"

// NowProvider is a function that returns the current time; storing one under
// ContextKey lets a test step through a sequence of times on successive
// calls to Now.
type NowProvider func() time.Time

// Now returns the current time, or the value (or NowProvider result) stashed
// in ctx under ContextKey if present. Panics if ContextKey holds a value of
// an unexpected type.
func Now(ctx context.Context) time.Time {
	v := ctx.Value(ContextKey)
	if v == nil {
		return time.Now()
	}
	switch val := v.(type) {
	case time.Time:
		return val
	case NowProvider:
		return val()
	default:
		panic("now: ContextKey holds a value that is neither time.Time nor NowProvider")
	}
}

// TimeTravelingCtx is a context.Context wrapper whose Now() can be advanced
// by tests via SetTime, independent of the wall clock.
type TimeTravelingCtx struct {
	context.Context
	t *time.Time
}

// TimeTravelingContext returns a context.Context (rooted at
// context.Background()) that reports t as Now() until SetTime is called.
func TimeTravelingContext(t time.Time) *TimeTravelingCtx {
	ctx := &TimeTravelingCtx{Context: context.Background(), t: &t}
	ctx.Context = context.WithValue(ctx.Context, ContextKey, NowProvider(func() time.Time {
		return *ctx.t
	}))
	return ctx
}

// SetTime advances the time this context reports as Now().
func (c *TimeTravelingCtx) SetTime(t time.Time) {
	*c.t = t
}

// WithContext returns an equivalent time-traveling context whose parent is
// base instead of context.Background(), preserving any values base carries.
func (c *TimeTravelingCtx) WithContext(base context.Context) *TimeTravelingCtx {
	wrapped := &TimeTravelingCtx{Context: base, t: c.t}
	wrapped.Context = context.WithValue(wrapped.Context, ContextKey, NowProvider(func() time.Time {
		return *wrapped.t
	}))
	return wrapped
}
