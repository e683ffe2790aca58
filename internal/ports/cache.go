package ports

import (
	"context"
	"time"
)

// RateState is the sliding counter kept per rate-limit key.
type RateState struct {
	Count        int
	BlockedUntil *time.Time
}

// RateLimitStore throttles provisioning submissions per IP and per identifier.
// Implementations may degrade open: a store error is treated by the caller as
// "no limit information", never as a hard failure.
type RateLimitStore interface {
	Get(ctx context.Context, key string) (RateState, error)
	Record(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (RateState, error)
}
