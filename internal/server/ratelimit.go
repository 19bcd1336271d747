package server

import (
	"sync"
	"time"
)

// RateLimiter tracks request timestamps per named bucket over a sliding
// window. The service binds to loopback only, so buckets are per endpoint
// class rather than per client.
type RateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	sweepGap  time.Duration
	lastSweep time.Time
	buckets   map[string][]time.Time
	now       func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	window := time.Duration(cfg.WindowSec) * time.Second
	if window <= 0 {
		window = 60 * time.Second
	}
	sweepGap := time.Duration(cfg.SweepIntervalSec) * time.Second
	if sweepGap <= 0 {
		sweepGap = 300 * time.Second
	}
	return &RateLimiter{
		window:    window,
		sweepGap:  sweepGap,
		lastSweep: time.Now(),
		buckets:   map[string][]time.Time{},
		now:       time.Now,
	}
}

// Allow records one request against the bucket and reports whether it fits
// under limit within the window. Stale buckets are swept periodically so the
// map cannot grow without bound.
func (l *RateLimiter) Allow(bucket string, limit int) bool {
	if l == nil || limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	if now.Sub(l.lastSweep) > l.sweepGap {
		for key, marks := range l.buckets {
			if len(marks) == 0 || !marks[len(marks)-1].After(cutoff) {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	marks := filterRecentTime(l.buckets[bucket], cutoff)
	if len(marks) >= limit {
		l.buckets[bucket] = marks
		return false
	}
	l.buckets[bucket] = append(marks, now)
	return true
}

func filterRecentTime(items []time.Time, cutoff time.Time) []time.Time {
	if len(items) == 0 {
		return items
	}
	out := items[:0]
	for _, item := range items {
		if item.After(cutoff) {
			out = append(out, item)
		}
	}
	return out
}
