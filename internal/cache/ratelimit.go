package cache

import "time"

// RateLimiter is a fixed-window counter keyed by caller.
type RateLimiter struct {
	store  Store
	window time.Duration
	max    int
}

func NewRateLimiter(store Store, window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		store:  store,
		window: window,
		max:    max,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(key string) bool {
	if l.max <= 0 {
		return true
	}

	return l.store.Incr("ratelimit:"+key, l.window) <= l.max
}
