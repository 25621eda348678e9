package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/gamebridge/internal/backend"
)

// Errors
var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrNoSession     = errors.New("no session")
)

// Session is the pairing of a browser connection with its persistent
// backend link and relay task.
type Session struct {
	Conn   uuid.UUID
	RoomID string
	Link   backend.Link
	Relay  *Relay

	teardown sync.Once
}

// TeardownOnce runs fn at most once for this session, whether triggered by
// the connection handler's disconnect path or by the relay exiting on its
// own.
func (s *Session) TeardownOnce(fn func()) {
	s.teardown.Do(fn)
}

// Manager tracks the session, if any, for each browser connection.
type Manager interface {
	// Attach records a new session for conn. Returns ErrAlreadyJoined if
	// conn already has one.
	Attach(conn uuid.UUID, roomID string, link backend.Link) (*Session, error)

	// Get returns conn's session.
	Get(conn uuid.UUID) (*Session, bool)

	// Remove deletes conn's session and returns it for teardown.
	Remove(conn uuid.UUID) (*Session, bool)

	// Count returns the number of active sessions.
	Count() int
}

// manager implements the Manager interface.
type manager struct {
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session Manager.
func NewManager(logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Attach records a session for conn.
func (m *manager) Attach(conn uuid.UUID, roomID string, link backend.Link) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[conn]; ok {
		return nil, ErrAlreadyJoined
	}

	s := &Session{Conn: conn, RoomID: roomID, Link: link}
	m.sessions[conn] = s

	m.logger.Debug("session attached", "conn_id", conn, "room", roomID)
	return s, nil
}

// Get returns conn's session.
func (m *manager) Get(conn uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[conn]
	return s, ok
}

// Remove deletes and returns conn's session.
func (m *manager) Remove(conn uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[conn]
	if !ok {
		return nil, false
	}
	delete(m.sessions, conn)

	m.logger.Debug("session removed", "conn_id", conn, "room", s.RoomID)
	return s, true
}

// Count returns the number of active sessions.
func (m *manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
