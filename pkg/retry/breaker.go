package retry

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker refuses calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker.
type CircuitState int32

const (
	// CircuitClosed lets calls through.
	CircuitClosed CircuitState = iota
	// CircuitOpen refuses calls until the reset timeout passes.
	CircuitOpen
	// CircuitHalfOpen lets trial calls through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxErrors is the number of consecutive failures that opens the circuit.
	MaxErrors int

	// ResetTimeout is how long the circuit stays open.
	ResetTimeout time.Duration

	// SuccessThreshold is the number of half-open successes that close it.
	SuccessThreshold int

	// OnStateChange is called on every transition.
	OnStateChange func(from, to CircuitState)
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxErrors:        5,
		ResetTimeout:     30 * time.Second,
		SuccessThreshold: 1,
	}
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	config *BreakerConfig
	now    func() time.Time

	state     CircuitState
	errors    int
	successes int
	openedAt  time.Time

	mu sync.Mutex
}

// NewBreaker creates a closed breaker.
func NewBreaker(config *BreakerConfig) *Breaker {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	return &Breaker{config: config, now: time.Now}
}

// State returns the current state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow returns nil if a call may proceed and ErrCircuitOpen otherwise.
// An open breaker turns half-open once the reset timeout has passed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen {
		if b.now().Sub(b.openedAt) < b.config.ResetTimeout {
			return ErrCircuitOpen
		}
		b.setState(CircuitHalfOpen)
	}
	return nil
}

// Record reports the outcome of a call.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		switch b.state {
		case CircuitHalfOpen:
			b.successes++
			if b.successes >= b.config.SuccessThreshold {
				b.setState(CircuitClosed)
			}
		default:
			b.errors = 0
		}
		return
	}

	switch b.state {
	case CircuitClosed:
		b.errors++
		if b.errors >= b.config.MaxErrors {
			b.trip()
		}
	case CircuitHalfOpen:
		b.trip()
	}
}

// Do runs fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	b.Record(err)
	return err
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setState(CircuitClosed)
}

func (b *Breaker) trip() {
	b.openedAt = b.now()
	b.setState(CircuitOpen)
}

// setState must be called with b.mu held.
func (b *Breaker) setState(to CircuitState) {
	from := b.state
	b.state = to
	b.errors = 0
	b.successes = 0
	if b.config.OnStateChange != nil && from != to {
		b.config.OnStateChange(from, to)
	}
}
