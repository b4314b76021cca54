// Package ratelimit throttles login attempts per client IP.
//
// Each IP owns a fixed window that opens on its first attempt. Attempts past
// maxAttempts inside the window are refused until it closes; a successful
// login clears the IP. Stale windows are swept once a minute.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// LoginRateLimiter is safe for concurrent use.
type LoginRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	period      time.Duration
	now         func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewLoginRateLimiter allows maxAttempts per period per IP.
func NewLoginRateLimiter(maxAttempts int, period time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		period:      period,
		now:         time.Now,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	go rl.sweepLoop(time.Minute)

	return rl
}

// Allow counts one attempt for ip and reports whether it is within the limit.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.start) > rl.period {
		rl.windows[ip] = &window{count: 1, start: now}
		return true
	}

	w.count++
	return w.count <= rl.maxAttempts
}

// Reset forgets ip.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.windows, ip)
}

// RetryAfterSeconds is the Retry-After value for a throttled ip.
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok {
		return 0
	}

	remaining := rl.period - rl.now().Sub(w.start)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Close stops the sweeper. Safe to call twice.
func (rl *LoginRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *LoginRateLimiter) sweepLoop(every time.Duration) {
	defer close(rl.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *LoginRateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.windows {
		if now.Sub(w.start) > rl.period {
			delete(rl.windows, ip)
		}
	}
}

// ExtractIP returns the client IP, preferring proxy headers.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage renders a wait time for error messages.
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
