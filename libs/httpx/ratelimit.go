package httpx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Limiter decides whether one more hit for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Window() time.Duration
}

// MemoryLimiter is a per-process fixed-window limiter.
type MemoryLimiter struct {
	limit    int
	window   time.Duration
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	count     int
	resetTime time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	limit, window = limiterDefaults(limit, window)
	return &MemoryLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		visitors: map[string]*visitor{},
	}
}

func (l *MemoryLimiter) Window() time.Duration { return l.window }

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v := l.visitors[key]
	if v == nil || now.After(v.resetTime) {
		l.visitors[key] = &visitor{count: 1, resetTime: now.Add(l.window)}
		l.sweep(now)
		return true, nil
	}
	if v.count >= l.limit {
		return false, nil
	}
	v.count++
	return true, nil
}

// sweep drops expired visitors once the map grows, keeping memory bounded.
func (l *MemoryLimiter) sweep(now time.Time) {
	if len(l.visitors) < 4096 {
		return
	}
	for k, v := range l.visitors {
		if now.After(v.resetTime) {
			delete(l.visitors, k)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429. When the limiter
// itself fails, failOpen decides between serving the request and answering 503.
func RateLimit(l Limiter, logger *slog.Logger, failOpen bool) Middleware {
	retryAfter := strconv.Itoa(int(l.Window().Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), ClientIP(r))
			if err != nil {
				if logger != nil {
					logger.Warn("rate limiter error", "err", err)
				}
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, http.StatusServiceUnavailable, "rate limiter unavailable")
				return
			}
			if !ok {
				w.Header().Set("Retry-After", retryAfter)
				WriteError(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the first X-Forwarded-For hop, then the remote address.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func limiterDefaults(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return limit, window
}
