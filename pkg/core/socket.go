package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Common socket errors.
var (
	ErrSocketClosed   = errors.New("socket is closed")
	ErrSendFailed     = errors.New("failed to send message")
	ErrInvalidMessage = errors.New("invalid message format")
)

// DefaultInfoQueueSize is the capacity of a socket's info queue.
const DefaultInfoQueueSize = 64

// Transport is the outbound half of a connection.
type Transport interface {
	Send(msg Message) error
	Close() error
	IsConnected() bool
}

// Message is an outbound message to the client.
type Message struct {
	Ref     string         `json:"ref,omitempty"`
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Socket is one browser connection. Outbound messages go through the
// transport. Inbound info messages are queued for the router's message loop,
// which hands them to the component's HandleInfo.
type Socket struct {
	id        string
	transport Transport
	connected bool

	// Unix nanoseconds
	lastActivity atomic.Int64
	// Consecutive handler failures.
	failures atomic.Int32

	infoCh chan any
	done   chan struct{}
	once   sync.Once

	mu sync.RWMutex
}

// NewSocket creates a connected socket with the given ID and transport.
func NewSocket(id string, transport Transport) *Socket {
	s := &Socket{
		id:        id,
		transport: transport,
		connected: true,
		infoCh:    make(chan any, DefaultInfoQueueSize),
		done:      make(chan struct{}),
	}
	s.UpdateActivity()
	return s
}

// ID returns the socket's unique identifier.
func (s *Socket) ID() string {
	return s.id
}

// Topic returns the channel topic used for pushes to this socket.
func (s *Socket) Topic() string {
	return "lv:" + s.id
}

// IsConnected returns true if the socket is connected.
func (s *Socket) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && s.transport != nil && s.transport.IsConnected()
}

// LastActivity returns the time of last activity.
func (s *Socket) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// UpdateActivity updates the last activity timestamp.
func (s *Socket) UpdateActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// Send sends a message to the client.
func (s *Socket) Send(msg Message) error {
	s.mu.RLock()
	connected := s.connected
	transport := s.transport
	s.mu.RUnlock()

	if !connected || transport == nil || !transport.IsConnected() {
		return ErrSocketClosed
	}

	s.lastActivity.Store(time.Now().UnixNano())

	if err := transport.Send(msg); err != nil {
		s.mu.RLock()
		stillConnected := s.connected
		s.mu.RUnlock()
		if !stillConnected {
			return ErrSocketClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	return nil
}

// Push sends an event to the client.
func (s *Socket) Push(event string, payload map[string]any) error {
	return s.Send(Message{
		Topic:   s.Topic(),
		Event:   event,
		Payload: payload,
	})
}

// SendInfo queues msg for the component's HandleInfo. It is safe to call
// from any goroutine. It blocks while the queue is full and returns
// ErrSocketClosed once the socket has been closed.
func (s *Socket) SendInfo(msg any) error {
	select {
	case <-s.done:
		return ErrSocketClosed
	default:
	}

	select {
	case s.infoCh <- msg:
		return nil
	case <-s.done:
		return ErrSocketClosed
	}
}

// Info returns the queue of pending info messages.
func (s *Socket) Info() <-chan any {
	return s.infoCh
}

// Done is closed when the socket is closed.
func (s *Socket) Done() <-chan struct{} {
	return s.done
}

// DiffPayload is the diff format sent to clients after a render.
// Text slots (s) replace textContent, HTML slots (h) replace innerHTML,
// and a full render (f) replaces the whole view.
type DiffPayload struct {
	Version   uint64            `json:"v"`
	Slots     map[string]string `json:"s,omitempty"`
	HTMLSlots map[string]string `json:"h,omitempty"`
	Full      string            `json:"f,omitempty"`
}

// IsEmpty returns true if the payload has no changes.
func (d *DiffPayload) IsEmpty() bool {
	return len(d.Slots) == 0 && len(d.HTMLSlots) == 0 && d.Full == ""
}

// Size returns the total size of the slot contents in bytes.
func (d *DiffPayload) Size() int {
	size := len(d.Full)
	for _, content := range d.Slots {
		size += len(content)
	}
	for _, content := range d.HTMLSlots {
		size += len(content)
	}
	return size
}

// SendDiff pushes a diff payload. Empty payloads are not sent.
func (s *Socket) SendDiff(payload *DiffPayload) error {
	if payload == nil || payload.IsEmpty() {
		return nil
	}

	return s.Push("diff", map[string]any{
		"v": payload.Version,
		"s": payload.Slots,
		"h": payload.HTMLSlots,
		"f": payload.Full,
	})
}

// Close closes the socket and its transport. Pending info messages are
// discarded.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.connected = false
	transport := s.transport
	s.mu.Unlock()

	s.once.Do(func() { close(s.done) })

	if transport != nil {
		return transport.Close()
	}
	return nil
}

// RecordFailure counts a failed handler call and returns the run length.
func (s *Socket) RecordFailure() int {
	return int(s.failures.Add(1))
}

// ResetFailures is called after a handler succeeds.
func (s *Socket) ResetFailures() {
	s.failures.Store(0)
}

// SocketManager tracks all live sockets.
type SocketManager struct {
	sockets    map[string]*Socket
	isShutdown bool
	mu         sync.RWMutex
}

// NewSocketManager creates a new socket manager.
func NewSocketManager() *SocketManager {
	return &SocketManager{
		sockets: make(map[string]*Socket),
	}
}

// Add registers a socket. After Shutdown the socket is closed instead.
func (sm *SocketManager) Add(socket *Socket) {
	sm.mu.Lock()
	if sm.isShutdown {
		sm.mu.Unlock()
		socket.Close()
		return
	}
	sm.sockets[socket.ID()] = socket
	sm.mu.Unlock()
}

// Remove unregisters a socket.
func (sm *SocketManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sockets, id)
}

// Get retrieves a socket by ID.
func (sm *SocketManager) Get(id string) (*Socket, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sockets[id]
	return s, ok
}

// Count returns the number of active sockets.
func (sm *SocketManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sockets)
}

// All returns all sockets.
func (sm *SocketManager) All() []*Socket {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make([]*Socket, 0, len(sm.sockets))
	for _, s := range sm.sockets {
		result = append(result, s)
	}
	return result
}

// Shutdown closes every socket and rejects new ones. It returns early with
// ctx.Err() if ctx ends while sockets are still closing.
func (sm *SocketManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	if sm.isShutdown {
		sm.mu.Unlock()
		return nil
	}
	sm.isShutdown = true
	sockets := make([]*Socket, 0, len(sm.sockets))
	for _, s := range sm.sockets {
		sockets = append(sockets, s)
	}
	sm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, s := range sockets {
			s.Close()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsShutdown returns true if the manager is shutting down.
func (sm *SocketManager) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isShutdown
}

// CleanupInactive closes and removes sockets idle for longer than maxInactive.
func (sm *SocketManager) CleanupInactive(maxInactive time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	removed := 0

	for id, s := range sm.sockets {
		if now.Sub(s.LastActivity()) > maxInactive {
			s.Close()
			delete(sm.sockets, id)
			removed++
		}
	}

	return removed
}
