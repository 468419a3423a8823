package client

import (
	"errors"
	"sync"
)

var ErrRoomBusy = errors.New("a live session already owns this room")

// Registry enforces at most one live session per room within a process.
// It is injected into sessions rather than being a package singleton, so
// tests (and multi-tenant hosts) can run isolated registries.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Lookup - returns the live session owning a room, if any.
func (that *Registry) Lookup(roomCode string) *Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.sessions[roomCode]
}

// acquire - atomically claims a room for a session. Claiming a room that
// another live session owns fails with ErrRoomBusy; re-claiming by the
// same session is a no-op.
func (that *Registry) acquire(roomCode string, session *Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if owner, ok := that.sessions[roomCode]; ok && owner != session {
		return ErrRoomBusy
	}

	that.sessions[roomCode] = session

	return nil
}

// release - removes the claim if this session still holds it.
func (that *Registry) release(roomCode string, session *Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sessions[roomCode] == session {
		delete(that.sessions, roomCode)
	}
}
