// Package transport carries protocol messages between the browser runtime
// and the server.
package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pranayvarade/livefolio/pkg/protocol"
)

// Common transport errors.
var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendTimeout      = errors.New("send timeout")
)

// Transport is a bidirectional message stream.
type Transport interface {
	// Connect dials the remote end (client side).
	Connect(ctx context.Context) error

	// Send queues a message for the remote end.
	Send(msg *protocol.Message) error

	// Receive returns the channel of decoded inbound messages. It is never
	// closed; select on CloseChan to detect disconnects.
	Receive() <-chan *protocol.Message

	Close() error
	IsConnected() bool
	Type() TransportType
}

// TransportType identifies the transport mechanism.
type TransportType string

const (
	TransportWebSocket TransportType = "websocket"
)

// TransportConfig holds common transport configuration.
type TransportConfig struct {
	// ReadTimeout is the longest the connection may stay silent.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write and a blocked Send.
	WriteTimeout time.Duration

	// PingInterval is how often protocol-level pings are sent.
	PingInterval time.Duration

	// MaxMessageSize is the maximum inbound frame size in bytes.
	MaxMessageSize int64

	SendBufferSize    int
	ReceiveBufferSize int
}

// DefaultTransportConfig returns sensible defaults.
func DefaultTransportConfig() *TransportConfig {
	return &TransportConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBufferSize:    256,
		ReceiveBufferSize: 256,
	}
}

// BaseTransport holds the channels and connection flag shared by transports.
type BaseTransport struct {
	config    *TransportConfig
	connected bool
	sendCh    chan *protocol.Message
	recvCh    chan *protocol.Message
	closeCh   chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewBaseTransport creates a new base transport.
func NewBaseTransport(config *TransportConfig) *BaseTransport {
	if config == nil {
		config = DefaultTransportConfig()
	}
	return &BaseTransport{
		config:  config,
		sendCh:  make(chan *protocol.Message, config.SendBufferSize),
		recvCh:  make(chan *protocol.Message, config.ReceiveBufferSize),
		closeCh: make(chan struct{}),
	}
}

// Config returns the transport configuration.
func (t *BaseTransport) Config() *TransportConfig {
	return t.config
}

// IsConnected returns the connection status.
func (t *BaseTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// SetConnected updates the connection status.
func (t *BaseTransport) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

// Receive returns the receive channel.
func (t *BaseTransport) Receive() <-chan *protocol.Message {
	return t.recvCh
}

// CloseChan is closed when the transport closes.
func (t *BaseTransport) CloseChan() <-chan struct{} {
	return t.closeCh
}

// Close marks the transport closed. It is safe to call more than once.
func (t *BaseTransport) Close() error {
	t.closeOnce.Do(func() {
		t.SetConnected(false)
		close(t.closeCh)
	})
	return nil
}

// deliver hands an inbound message to the receiver, waiting while the
// buffer is full.
func (t *BaseTransport) deliver(msg *protocol.Message) bool {
	select {
	case t.recvCh <- msg:
		return true
	case <-t.closeCh:
		return false
	}
}
