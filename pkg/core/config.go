package core

import (
	"time"
)

// TimeoutConfig configures timeouts for the live runtime.
type TimeoutConfig struct {
	// ComponentMount bounds a Mount call.
	ComponentMount time.Duration

	// ComponentEvent bounds a HandleEvent or HandleInfo call.
	ComponentEvent time.Duration

	// WebSocketRead is the idle read timeout; the client heartbeat must
	// arrive within it.
	WebSocketRead time.Duration

	// WebSocketWrite is the write timeout for WebSocket frames.
	WebSocketWrite time.Duration

	// SessionCleanup is the interval for sweeping idle sockets.
	SessionCleanup time.Duration

	// GracefulShutdown bounds the shutdown sequence.
	GracefulShutdown time.Duration
}

// DefaultTimeoutConfig returns the default timeouts.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount:   5 * time.Second,
		ComponentEvent:   3 * time.Second,
		WebSocketRead:    60 * time.Second,
		WebSocketWrite:   10 * time.Second,
		SessionCleanup:   5 * time.Minute,
		GracefulShutdown: 30 * time.Second,
	}
}

// SecurityConfig configures origin checks and response headers.
type SecurityConfig struct {
	// AllowedOrigins for WebSocket connections besides the page's own origin.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation (ONLY for development!).
	InsecureDevMode bool

	// SecureHeaders enables security response headers.
	SecureHeaders bool
}

// DefaultSecurityConfig returns secure default configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AllowedOrigins:  nil, // same-origin only
		InsecureDevMode: false,
		SecureHeaders:   true,
	}
}

// Config combines the runtime settings.
type Config struct {
	Timeouts TimeoutConfig
	Security SecurityConfig

	// Codec is the default wire codec when the client does not ask for one.
	Codec string

	// MaxMessageSize is the largest inbound frame accepted.
	MaxMessageSize int64

	// MaxConnections caps concurrent sockets; 0 means unlimited.
	MaxConnections int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeouts:       DefaultTimeoutConfig(),
		Security:       DefaultSecurityConfig(),
		Codec:          "phoenix",
		MaxMessageSize: 64 * 1024,
		MaxConnections: 10000,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.MaxMessageSize <= 0 {
		return ErrInvalidMaxMessageSize
	}
	if c.MaxConnections < 0 {
		return ErrInvalidMaxConnections
	}
	return nil
}

// Configuration errors.
var (
	ErrInvalidMaxMessageSize = configError("MaxMessageSize must be positive")
	ErrInvalidMaxConnections = configError("MaxConnections must not be negative")
)

type configError string

func (e configError) Error() string { return string(e) }
