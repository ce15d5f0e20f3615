package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// Session is one client connection's protocol state. Adapters create one
// session per connection and destroy it on disconnect.
type Session struct {
	id        string
	transport string
	createdAt time.Time

	mu          sync.RWMutex
	initialized bool
	clientInfo  *protocol.ClientInfo
	clientCaps  *protocol.ClientCapabilities
}

// NewSession creates a session for the given transport kind.
func NewSession(transport string) *Session {
	return &Session{
		id:        uuid.NewString(),
		transport: transport,
		createdAt: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Transport returns the owning transport kind.
func (s *Session) Transport() string {
	return s.transport
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Initialized reports whether the initialize handshake completed.
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Session) initialize(info *protocol.ClientInfo, caps *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.clientInfo = info
	s.clientCaps = caps
}

// ClientInfo returns the client identity recorded during initialize.
func (s *Session) ClientInfo() *protocol.ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}

// SessionStore tracks live sessions by id. The HTTP adapters use it to
// correlate the Mcp-Session-Id header with protocol state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID()] = s
}

// Get looks up a session by id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove drops a session.
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
