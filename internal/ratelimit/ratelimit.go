// Package ratelimit implements sliding-window request limiting keyed by an
// arbitrary string (usually "<scope>:<client ip>").
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

// Limiter admits at most a fixed number of events per key within a sliding
// window. Rejected attempts are not counted.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	// Reset forgets every event recorded for key.
	Reset(ctx context.Context, key string) error
}

// RetryAfterSeconds renders d as a Retry-After header value (at least 1).
func RetryAfterSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
