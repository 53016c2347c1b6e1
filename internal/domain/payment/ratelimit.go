package payment

import (
	"sync"
	"time"
)

// Rate limiting defaults
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

type attemptWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter throttles payment attempts per key (user ID, IP, ...).
// It is a coarse fixed-window counter: the window resets fully once
// elapsed rather than sliding continuously.
type RateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptWindow
	maxAttempts int
	window      time.Duration
	stopChan    chan struct{}
	closeOnce   sync.Once
}

// NewRateLimiter creates a rate limiter allowing maxAttempts per window.
// Zero or negative arguments fall back to the defaults.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	rl := &RateLimiter{
		attempts:    make(map[string]*attemptWindow),
		maxAttempts: maxAttempts,
		window:      window,
		stopChan:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow records an attempt for the key and reports whether it is within
// the limit. The first attempt after a window elapses starts a new window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, exists := rl.attempts[key]

	if !exists || now.Sub(w.windowStart) >= rl.window {
		rl.attempts[key] = &attemptWindow{count: 1, windowStart: now}
		return true
	}

	if w.count < rl.maxAttempts {
		w.count++
		return true
	}

	return false
}

// Remaining returns how many attempts are left for the key in the
// current window
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.attempts[key]
	if !exists || time.Since(w.windowStart) >= rl.window {
		return rl.maxAttempts
	}
	if w.count >= rl.maxAttempts {
		return 0
	}
	return rl.maxAttempts - w.count
}

// Reset clears the window for the key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.stopChan)
	})
}

// cleanupLoop periodically drops windows that elapsed long ago
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, w := range rl.attempts {
				if now.Sub(w.windowStart) > rl.window*2 {
					delete(rl.attempts, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
