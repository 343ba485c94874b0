// Package ratelimit implements a fixed-window in-memory request
// limiter. It is best-effort abuse prevention: entries live in process
// memory and do not survive a restart.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 10
	DefaultWindow      = time.Minute
)

// Result reports one admission decision.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is a process-wide fixed-window counter keyed by client
// identifier. Constructed once at startup and never torn down; expired
// entries are swept lazily on each call to bound memory growth.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		entries: make(map[string]*entry),
		max:     maxRequests,
		window:  window,
		now:     time.Now,
	}
}

// Check admits or denies one request for identifier. The first request
// in a window resets the entry to count 1; the request after the cap is
// denied without incrementing.
func (l *Limiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		l.entries[identifier] = e
		return Result{Allowed: true, Remaining: l.max - 1, ResetAt: e.resetAt}
	}
	if e.count >= l.max {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}
	e.count++
	return Result{Allowed: true, Remaining: l.max - e.count, ResetAt: e.resetAt}
}

// Limit returns the per-window request cap.
func (l *Limiter) Limit() int { return l.max }

// sweep drops entries whose window has ended. Caller holds the lock.
func (l *Limiter) sweep(now time.Time) {
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

// ClientIdentifier derives the rate-limit key for a request: first hop
// of X-Forwarded-For, then X-Real-IP, then CF-Connecting-IP, else a
// shared "unknown" bucket. Unidentifiable clients sharing one budget is
// an accepted weakness.
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if cfIP := r.Header.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}
	return "unknown"
}
