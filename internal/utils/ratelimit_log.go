package utils

import (
	"log"
	"sync"
	"time"
)

// RateLimitedLogger suppresses repeated WARN-level log lines for the same
// key within a window, logging only the first occurrence and a periodic
// "suppressed N" summary. Generalizes the per-connection backoff counter
// internal/events/client.go used to keep reconnect logs from flooding.
type RateLimitedLogger struct {
	logger *log.Logger
	window time.Duration

	mu    sync.Mutex
	state map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	firstAt    time.Time
	suppressed int
}

// NewRateLimitedLogger returns a logger that emits at most one line per key
// per window, rolling up anything suppressed in between.
func NewRateLimitedLogger(logger *log.Logger, window time.Duration) *RateLimitedLogger {
	return &RateLimitedLogger{logger: logger, window: window, state: make(map[string]*rateLimitEntry)}
}

// Warnf logs format/args under key, dropping repeats within the window and
// reporting how many were dropped once the window rolls over.
func (r *RateLimitedLogger) Warnf(key, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.state[key]
	if !ok || now.Sub(entry.firstAt) >= r.window {
		if ok && entry.suppressed > 0 {
			r.logger.Printf("[WARN] %s (suppressed %d similar in last %v)", key, entry.suppressed, r.window)
		}
		r.state[key] = &rateLimitEntry{firstAt: now}
		r.logger.Printf("[WARN] "+format, args...)
		return
	}

	entry.suppressed++
}
