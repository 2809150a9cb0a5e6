package application

import (
	"sync"
	"time"

	"sif-shopify-layer/internal/domain"
)

// Default throttle for remote-mutating placement endpoints.
const (
	DefaultRateLimitWindow = 10 * time.Second
	DefaultRateLimitMax    = 3
)

// sweepThreshold bounds how many windows are kept before expired ones are dropped.
const sweepThreshold = 1024

// RateLimitDecision is the outcome of a Check
type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window counter per key. Windows live only in memory and
// reset lazily on the first call after they expire.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	now     func() time.Time
	windows map[string]*rateWindow
}

// RateLimiterOption configures a RateLimiter
type RateLimiterOption func(*RateLimiter)

// WithClock replaces the time source
func WithClock(now func() time.Time) RateLimiterOption {
	return func(l *RateLimiter) {
		l.now = now
	}
}

// NewRateLimiter creates a limiter allowing max calls per window
func NewRateLimiter(window time.Duration, max int, opts ...RateLimiterOption) *RateLimiter {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	l := &RateLimiter{
		window:  window,
		max:     max,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Window returns the window length
func (l *RateLimiter) Window() time.Duration {
	return l.window
}

// Check counts one call for key
func (l *RateLimiter) Check(key string) RateLimitDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		if !ok && len(l.windows) >= sweepThreshold {
			l.sweep(now)
		}
		l.windows[key] = &rateWindow{count: 1, resetAt: now.Add(l.window)}
		return RateLimitDecision{Allowed: true, Remaining: l.max - 1}
	}

	if w.count >= l.max {
		return RateLimitDecision{Allowed: false, Remaining: 0, RetryAfter: l.window}
	}

	w.count++
	return RateLimitDecision{Allowed: true, Remaining: l.max - w.count}
}

// AllowStore checks the store's key and returns a *domain.RateLimitError on deny
func (l *RateLimiter) AllowStore(shop string) error {
	if d := l.Check("shop:" + shop); !d.Allowed {
		return &domain.RateLimitError{RetryAfter: d.RetryAfter}
	}
	return nil
}

func (l *RateLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, k)
		}
	}
}
