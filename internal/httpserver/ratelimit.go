// internal/httpserver/ratelimit.go
//
// Per-client rate limiting for keystroke posts.
// Responsibilities:
//   - One token bucket per client IP, sized from RATE_LIMIT_RPS/BURST.
//   - 429 "rate_limited" when a client posts faster than its bucket allows.
//   - Forgetting buckets that have been idle past the sweep cutoff.

package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// limiter hands out one token bucket per client IP.
type limiter struct {
	mu    sync.Mutex
	rps   int
	burst int
	byKey map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiter(rps, burst int) *limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = rps
	}
	return &limiter{rps: rps, burst: burst, byKey: make(map[string]*bucket)}
}

// get returns the limiter for key, creating it on first use.
func (l *limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.byKey[key]; ok {
		b.seen = now
		return b.lim
	}
	if key == "" {
		log.Warn().Msg("rate limiter key is empty")
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(l.rps)), l.burst)
	l.byKey[key] = &bucket{lim: lim, seen: now}
	return lim
}

// prune drops buckets not used since cutoff and reports how many.
func (l *limiter) prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, b := range l.byKey {
		if b.seen.Before(cutoff) {
			delete(l.byKey, key)
			n++
		}
	}
	return n
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

// rateLimit rejects clients that post keystrokes faster than the configured rate.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limits.get(clientIP(r), s.now()).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port, if any, from RemoteAddr (already rewritten by RealIP).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
