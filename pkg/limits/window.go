// Package limits provides the request limiters used by the server: a
// sliding-window limiter keyed by an arbitrary string and a per-IP cap on
// concurrent requests.
package limits

import (
	"sync"
	"time"
)

// Window is an in-memory sliding-window rate limiter. Each key may make at
// most limit calls in any span of length window. Expired entries are pruned
// on access, so no background goroutine is needed.
type Window struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	keys map[string][]time.Time
}

// NewWindow creates a limiter allowing limit calls per key within window.
func NewWindow(limit int, window time.Duration) *Window {
	return &Window{
		limit:  limit,
		window: window,
		now:    time.Now,
		keys:   make(map[string][]time.Time),
	}
}

// Allow records a call for key and reports whether it is within the limit.
// Denied calls are not recorded.
func (w *Window) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	hits := w.prune(key, now)
	if len(hits) >= w.limit {
		return false
	}
	w.keys[key] = append(hits, now)

	if len(w.keys) > pruneThreshold {
		w.pruneAll(now)
	}
	return true
}

// Count returns the calls recorded for key in the current window.
func (w *Window) Count(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.prune(key, w.now()))
}

// Limit returns the calls allowed per key within the window.
func (w *Window) Limit() int {
	return w.limit
}

// Reset forgets every call recorded for key.
func (w *Window) Reset(key string) {
	w.mu.Lock()
	delete(w.keys, key)
	w.mu.Unlock()
}

// pruneThreshold is the key count above which Allow sweeps idle keys.
const pruneThreshold = 1024

func (w *Window) prune(key string, now time.Time) []time.Time {
	hits := w.keys[key]
	start := now.Add(-w.window)

	i := 0
	for i < len(hits) && !hits[i].After(start) {
		i++
	}
	hits = hits[i:]

	if len(hits) == 0 {
		delete(w.keys, key)
		return nil
	}
	w.keys[key] = hits
	return hits
}

func (w *Window) pruneAll(now time.Time) {
	for key := range w.keys {
		w.prune(key, now)
	}
}
