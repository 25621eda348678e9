// Package room implements the Room Registry component.
//
// Rooms are capacity-bounded pairing constructs keyed by an externally
// supplied identifier. A room exists only while it has members; the last
// departure deletes it.
package room

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Errors
var (
	ErrRoomFull = errors.New("room full")
)

// Registry tracks room membership for all connections.
type Registry interface {
	// Join adds conn to roomID, creating the room if needed. The
	// insert-and-check-capacity step is atomic: of two simultaneous joins
	// into one free slot exactly one succeeds.
	Join(roomID string, conn uuid.UUID) error

	// Leave removes conn from roomID. An empty room is deleted. Reports
	// whether the connection was a member.
	Leave(roomID string, conn uuid.UUID) bool

	// Members returns the members of roomID in insertion order, or nil if
	// the room does not exist.
	Members(roomID string) []uuid.UUID

	// Count returns the number of rooms.
	Count() int
}

// registry implements the Registry interface.
type registry struct {
	capacity int
	logger   *slog.Logger

	mu    sync.Mutex
	rooms map[string][]uuid.UUID
}

// NewRegistry creates a Registry with the given per-room capacity.
func NewRegistry(capacity int, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registry{
		capacity: capacity,
		logger:   logger,
		rooms:    make(map[string][]uuid.UUID),
	}
}

// Join adds conn to roomID.
func (r *registry) Join(roomID string, conn uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[roomID]
	if len(members) >= r.capacity {
		return ErrRoomFull
	}
	r.rooms[roomID] = append(members, conn)

	r.logger.Info("joined room",
		"room", roomID,
		"conn_id", conn,
		"members", len(r.rooms[roomID]),
	)
	return nil
}

// Leave removes conn from roomID.
func (r *registry) Leave(roomID string, conn uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}

	found := false
	kept := members[:0]
	for _, m := range members {
		if m == conn && !found {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return false
	}

	if len(kept) == 0 {
		delete(r.rooms, roomID)
		r.logger.Info("room deleted", "room", roomID)
	} else {
		r.rooms[roomID] = kept
		r.logger.Info("left room", "room", roomID, "conn_id", conn, "members", len(kept))
	}
	return true
}

// Members returns a copy of the member list in insertion order.
func (r *registry) Members(roomID string) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]uuid.UUID, len(members))
	copy(out, members)
	return out
}

// Count returns the number of live rooms.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
