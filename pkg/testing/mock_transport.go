package testing

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pranayvarade/livefolio/pkg/core"
)

// MockTransport implements core.Transport and records what a component
// pushes to the client.
type MockTransport struct {
	ID        string
	Connected bool
	Sent      []core.Message
	Closed    bool

	errorToSend error

	mu sync.Mutex
}

// NewMockTransport creates a connected mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		ID:        "test-socket-" + uuid.New().String()[:8],
		Connected: true,
	}
}

// Send records a sent message.
func (mt *MockTransport) Send(msg core.Message) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.errorToSend != nil {
		return mt.errorToSend
	}
	if mt.Closed {
		return core.ErrSocketClosed
	}

	mt.Sent = append(mt.Sent, msg)
	return nil
}

// Close marks the transport as closed.
func (mt *MockTransport) Close() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.Closed = true
	mt.Connected = false
	return nil
}

// IsConnected returns the connection status.
func (mt *MockTransport) IsConnected() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.Connected && !mt.Closed
}

// LastSent returns the last sent message.
func (mt *MockTransport) LastSent() core.Message {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if len(mt.Sent) == 0 {
		return core.Message{}
	}
	return mt.Sent[len(mt.Sent)-1]
}

// SentCount returns the number of sent messages.
func (mt *MockTransport) SentCount() int {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return len(mt.Sent)
}

// SentMessages returns a copy of all sent messages.
func (mt *MockTransport) SentMessages() []core.Message {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	result := make([]core.Message, len(mt.Sent))
	copy(result, mt.Sent)
	return result
}

// SentEvents returns the messages with the given event name.
func (mt *MockTransport) SentEvents(event string) []core.Message {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var result []core.Message
	for _, msg := range mt.Sent {
		if msg.Event == event {
			result = append(result, msg)
		}
	}
	return result
}

// SetError makes every following Send fail with err.
func (mt *MockTransport) SetError(err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.errorToSend = err
}

// Reset clears recorded messages and errors.
func (mt *MockTransport) Reset() {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.Sent = nil
	mt.Closed = false
	mt.Connected = true
	mt.errorToSend = nil
}
