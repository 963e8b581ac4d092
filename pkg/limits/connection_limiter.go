package limits

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ConnectionLimiter limits concurrent requests per client IP. A request
// holds its slot until the handler returns, unless the handler keeps it
// with Keep (a WebSocket that outlives its upgrade request does).
type ConnectionLimiter struct {
	maxPerIP int

	mu     sync.Mutex
	counts map[string]int

	totalBlocked atomic.Int64
}

// NewConnectionLimiter creates a limiter. maxPerIP <= 0 defaults to 100.
func NewConnectionLimiter(maxPerIP int) *ConnectionLimiter {
	if maxPerIP <= 0 {
		maxPerIP = 100
	}
	return &ConnectionLimiter{
		maxPerIP: maxPerIP,
		counts:   make(map[string]int),
	}
}

// Acquire takes a slot for ip. It returns false when ip is at the limit.
func (cl *ConnectionLimiter) Acquire(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.counts[ip] >= cl.maxPerIP {
		cl.totalBlocked.Add(1)
		return false
	}
	cl.counts[ip]++
	return true
}

// Release returns a slot taken by Acquire.
func (cl *ConnectionLimiter) Release(ip string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if n := cl.counts[ip]; n > 1 {
		cl.counts[ip] = n - 1
	} else {
		delete(cl.counts, ip)
	}
}

// Count returns the slots currently held by ip.
func (cl *ConnectionLimiter) Count(ip string) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.counts[ip]
}

// TotalBlocked returns how many requests were refused.
func (cl *ConnectionLimiter) TotalBlocked() int64 {
	return cl.totalBlocked.Load()
}

// Middleware rejects requests with 429 while the client is at its limit.
func (cl *ConnectionLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)

			if !cl.Acquire(ip) {
				http.Error(w, "Too Many Connections", http.StatusTooManyRequests)
				return
			}
			s := &slot{cl: cl, ip: ip}
			defer func() {
				if !s.kept.Load() {
					s.release()
				}
			}()

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), slotKey{}, s)))
		})
	}
}

type slotKey struct{}

type slot struct {
	cl   *ConnectionLimiter
	ip   string
	kept atomic.Bool
	once sync.Once
}

func (s *slot) release() {
	s.once.Do(func() { s.cl.Release(s.ip) })
}

// Keep takes over the slot the middleware acquired for the request in ctx.
// The slot stays held after the handler returns until the returned func is
// called. Without a slot in ctx the func does nothing.
func Keep(ctx context.Context) (release func()) {
	s, ok := ctx.Value(slotKey{}).(*slot)
	if !ok {
		return func() {}
	}
	s.kept.Store(true)
	return s.release
}

// ClientIP extracts the client IP from a request. X-Forwarded-For and
// X-Real-IP are trusted, so the server should sit behind a proxy that sets
// them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
