package web

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimiter implements a fixed-window request counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a per-minute limiter owned by the server, which
// stops its cleanup loop on Shutdown.
func (s *Server) newRateLimiter(perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries once per window.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return rl.rate > 0
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// middleware rejects requests over the limit with 429 and the RATE001 message.
// The key is RemoteAddr, already rewritten by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", fmt.Sprint(int(rl.window.Seconds())))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
