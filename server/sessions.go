package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/stackvm/pkg/bytecode"
)

// Session is a long-lived VM owned by one client. Its state carries over
// between runs until the client asks for a reset.
type Session struct {
	ID      string
	Name    string
	Created time.Time

	worker *VMWorker
}

// Worker returns the worker serializing access to the session VM.
func (s *Session) Worker() *VMWorker {
	return s.worker
}

// SessionStore manages sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newVM    func() *bytecode.VM
}

// NewSessionStore creates a session store. newVM builds the VM for each
// new session.
func NewSessionStore(newVM func() *bytecode.VM) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		newVM:    newVM,
	}
}

// Create creates a new session with an optional name.
func (s *SessionStore) Create(name string) *Session {
	session := &Session{
		ID:      uuid.NewString(),
		Name:    name,
		Created: time.Now(),
		worker:  NewVMWorker(s.newVM()),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

// Destroy removes a session and stops its worker. It reports whether the
// session existed.
func (s *SessionStore) Destroy(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		session.worker.Stop()
	}
	return ok
}

// List returns all sessions ordered by creation time.
func (s *SessionStore) List() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close destroys every session.
func (s *SessionStore) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.worker.Stop()
	}
}
