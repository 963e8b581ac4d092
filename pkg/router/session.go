package router

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pranayvarade/livefolio/pkg/core"
	"github.com/pranayvarade/livefolio/pkg/transport"
)

// LiveViewSession binds one WebSocket connection to its component instance.
type LiveViewSession struct {
	ID       string
	SocketID string

	Component core.Component
	Socket    *core.Socket
	Transport *transport.WebSocketTransport
	Adapter   *TransportAdapter

	Params  core.Params
	Session core.Session

	// JoinRef and Topic are set by phx_join.
	JoinRef string
	Topic   string

	CreatedAt    time.Time
	LastActivity time.Time
	Mounted      bool

	// Version orders diffs on the client.
	Version uint64

	slotHashes map[string]uint64
	closeOnce  sync.Once

	// releaseSlot frees the per-client connection slot, if one is held.
	releaseSlot func()

	mu sync.RWMutex
}

// NewLiveViewSession creates a session for a new connection.
func NewLiveViewSession(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	now := time.Now()
	return &LiveViewSession{
		ID:           uuid.NewString(),
		SocketID:     socketID,
		Component:    comp,
		Params:       params,
		Session:      session,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// GetSlotHashes returns the slot hashes of the last diff.
func (s *LiveViewSession) GetSlotHashes() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotHashes
}

// SetSlotHashes stores the slot hashes of the last diff.
func (s *LiveViewSession) SetSlotHashes(hashes map[string]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotHashes = hashes
}

// NextVersion increments and returns the diff version.
func (s *LiveViewSession) NextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Version++
	return s.Version
}

// UpdateActivity records client activity.
func (s *LiveViewSession) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// GetLastActivity returns the time of the last client activity.
func (s *LiveViewSession) GetLastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastActivity
}

// SetMounted marks the component as mounted.
func (s *LiveViewSession) SetMounted(mounted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mounted = mounted
}

// IsMounted reports whether the component has been mounted.
func (s *LiveViewSession) IsMounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Mounted
}

// SetJoin records the join reference and topic.
func (s *LiveViewSession) SetJoin(joinRef, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.JoinRef = joinRef
	s.Topic = topic
}

// GetJoinRef returns the join reference.
func (s *LiveViewSession) GetJoinRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.JoinRef
}

// LiveViewSessionManager tracks active sessions.
type LiveViewSessionManager struct {
	sessions map[string]*LiveViewSession
	bySocket map[string]*LiveViewSession
	mu       sync.RWMutex
}

// NewLiveViewSessionManager creates an empty session manager.
func NewLiveViewSessionManager() *LiveViewSessionManager {
	return &LiveViewSessionManager{
		sessions: make(map[string]*LiveViewSession),
		bySocket: make(map[string]*LiveViewSession),
	}
}

// Create creates and registers a new session.
func (m *LiveViewSessionManager) Create(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	lvSession := NewLiveViewSession(socketID, comp, params, session)

	m.mu.Lock()
	m.sessions[lvSession.ID] = lvSession
	m.bySocket[socketID] = lvSession
	m.mu.Unlock()

	return lvSession
}

// Get returns a session by ID.
func (m *LiveViewSessionManager) Get(sessionID string) (*LiveViewSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// GetBySocket returns a session by socket ID.
func (m *LiveViewSessionManager) GetBySocket(socketID string) (*LiveViewSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.bySocket[socketID]
	return s, ok
}

// Remove unregisters a session.
func (m *LiveViewSessionManager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		delete(m.bySocket, s.SocketID)
		delete(m.sessions, sessionID)
	}
}

// Count returns the number of active sessions.
func (m *LiveViewSessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
