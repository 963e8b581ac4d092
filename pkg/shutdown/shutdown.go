// Package shutdown runs ordered cleanup hooks when the process is asked to
// stop.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"
)

// Common shutdown errors.
var (
	ErrShutdownTimeout = errors.New("shutdown timed out")
	ErrAlreadyClosed   = errors.New("shutdown handler already closed")
)

// Hook priorities. Lower runs earlier.
const (
	// PriorityHTTP stops accepting requests.
	PriorityHTTP = 100

	// PrioritySockets closes live connections so components terminate.
	PrioritySockets = 200

	// PriorityStorage closes databases once nothing can write to them.
	PriorityStorage = 300
)

// Hook is one cleanup step.
type Hook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// Config configures the shutdown handler.
type Config struct {
	// Timeout bounds the whole hook sequence.
	Timeout time.Duration

	// Signals are the OS signals to listen for.
	Signals []os.Signal

	// OnHookComplete is called after each hook.
	OnHookComplete func(name string, err error, duration time.Duration)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Handler manages graceful shutdown.
type Handler struct {
	config *Config
	hooks  []Hook
	done   chan struct{}
	closed bool
	mu     sync.Mutex
}

// NewHandler creates a new shutdown handler.
func NewHandler(config *Config) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		done:   make(chan struct{}),
	}
}

// Register adds a hook.
func (h *Handler) Register(name string, priority int, fn func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, Hook{Name: name, Priority: priority, Fn: fn})
}

// RegisterCloser adds a hook for anything with a Close method.
func (h *Handler) RegisterCloser(name string, priority int, closer interface{ Close() error }) {
	h.Register(name, priority, func(ctx context.Context) error {
		return closer.Close()
	})
}

// Wait blocks until a signal arrives or ctx ends, then runs the hooks.
// It returns early with nil if Shutdown already ran.
func (h *Handler) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, h.config.Signals...)
	defer stop()

	select {
	case <-sigCtx.Done():
	case <-h.done:
		return nil
	}

	return h.Shutdown()
}

// Shutdown runs the hooks in priority order. Hooks with equal priority run
// in registration order. Every hook runs even if an earlier one fails.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrAlreadyClosed
	}
	h.closed = true
	close(h.done)

	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].Priority < hooks[j].Priority
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var errs []error
	for _, hook := range hooks {
		start := time.Now()
		err := hook.Fn(ctx)

		if h.config.OnHookComplete != nil {
			h.config.OnHookComplete(hook.Name, err, time.Since(start))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.Name, err))
		}

		if ctx.Err() != nil {
			errs = append(errs, ErrShutdownTimeout)
			break
		}
	}

	return errors.Join(errs...)
}

// Done is closed when shutdown starts.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
