// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// DefaultCheckTimeout applies to checks registered without a timeout.
const DefaultCheckTimeout = 5 * time.Second

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status     Status `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// HealthStatus is the overall status.
type HealthStatus struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// Check defines a single health check.
type Check struct {
	Name    string
	Check   func(ctx context.Context) error
	Timeout time.Duration

	// Critical failures make the service unhealthy; others degrade it.
	Critical bool
}

// Checker runs registered checks.
type Checker struct {
	checks  []Check
	version string
	mu      sync.RWMutex
}

// NewChecker creates a checker reporting the given version.
func NewChecker(version string) *Checker {
	return &Checker{version: version}
}

// AddCheck adds a non-critical check.
func (hc *Checker) AddCheck(name string, check func(context.Context) error, timeout time.Duration) {
	hc.add(Check{Name: name, Check: check, Timeout: timeout})
}

// AddCriticalCheck adds a check whose failure makes the service unhealthy.
func (hc *Checker) AddCriticalCheck(name string, check func(context.Context) error, timeout time.Duration) {
	hc.add(Check{Name: name, Check: check, Timeout: timeout, Critical: true})
}

func (hc *Checker) add(c Check) {
	if c.Timeout <= 0 {
		c.Timeout = DefaultCheckTimeout
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, c)
}

// Check runs all checks concurrently.
func (hc *Checker) Check(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	checks := make([]Check, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	status := HealthStatus{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now(),
		Version:   hc.version,
	}

	type namedResult struct {
		check  Check
		result CheckResult
	}

	results := make(chan namedResult, len(checks))
	var wg sync.WaitGroup

	for _, c := range checks {
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()

			start := time.Now()
			checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
			defer cancel()

			err := check.Check(checkCtx)

			result := CheckResult{
				Status:     StatusHealthy,
				DurationMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
			}
			results <- namedResult{check: check, result: result}
		}(c)
	}

	wg.Wait()
	close(results)

	for r := range results {
		status.Checks[r.check.Name] = r.result

		if r.result.Status != StatusHealthy {
			if r.check.Critical {
				status.Status = StatusUnhealthy
			} else if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		}
	}

	return status
}

// LivenessHandler answers 200 while the process runs.
func (hc *Checker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "alive",
			"timestamp": time.Now(),
		})
	})
}

// ReadinessHandler answers 503 when a critical check fails.
func (hc *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := hc.Check(r.Context())

		code := http.StatusOK
		if status.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// CapacityCheck fails once count reaches max. A max of zero disables it.
func CapacityCheck(count func() int, max int) func(context.Context) error {
	return func(ctx context.Context) error {
		if max <= 0 {
			return nil
		}
		if n := count(); n >= max {
			return fmt.Errorf("at capacity: %d of %d connections", n, max)
		}
		return nil
	}
}

// StateCheck fails while state() returns something other than want, for
// example a circuit breaker that is not closed.
func StateCheck[S comparable](state func() S, want S) func(context.Context) error {
	return func(ctx context.Context) error {
		if got := state(); got != want {
			return fmt.Errorf("state is %v", got)
		}
		return nil
	}
}
