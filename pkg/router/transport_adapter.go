package router

import (
	"sync"

	"github.com/pranayvarade/livefolio/pkg/core"
	"github.com/pranayvarade/livefolio/pkg/protocol"
	"github.com/pranayvarade/livefolio/pkg/transport"
)

// TransportAdapter lets a core.Socket push through a WebSocket transport.
// Once the client has joined, outbound pushes are addressed to the joined
// topic and carry its join ref.
type TransportAdapter struct {
	ws *transport.WebSocketTransport

	topic   string
	joinRef string
	mu      sync.RWMutex
}

// NewTransportAdapter creates a new adapter.
func NewTransportAdapter(ws *transport.WebSocketTransport) *TransportAdapter {
	return &TransportAdapter{ws: ws}
}

// Bind sets the topic and join ref used for pushes.
func (a *TransportAdapter) Bind(topic, joinRef string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.topic = topic
	a.joinRef = joinRef
}

// Send converts msg to a protocol message and queues it.
// Implements core.Transport.
func (a *TransportAdapter) Send(msg core.Message) error {
	a.mu.RLock()
	topic, joinRef := a.topic, a.joinRef
	a.mu.RUnlock()

	if topic == "" {
		topic = msg.Topic
	}

	out := protocol.PushMessage(joinRef, topic, msg.Event, msg.Payload).WithRef(msg.Ref)
	return a.ws.Send(out)
}

// Close closes the transport.
// Implements core.Transport.
func (a *TransportAdapter) Close() error {
	return a.ws.Close()
}

// IsConnected reports whether the transport is connected.
// Implements core.Transport.
func (a *TransportAdapter) IsConnected() bool {
	return a.ws.IsConnected()
}

// WebSocket returns the underlying transport.
func (a *TransportAdapter) WebSocket() *transport.WebSocketTransport {
	return a.ws
}
