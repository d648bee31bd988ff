/*
Package chat contains the real-time room, session, and presence engine.

This file defines the SessionRegistry, the process-wide mapping from connection id
to authenticated identity. Entries are created on successful handshake and removed
on disconnect; no entry outlives its connection.
*/
package chat

import (
	"sync"

	"parley/internal/app/user"
	"parley/internal/pkg/logx"
)

// SessionRegistry maps live connection ids to their authenticated identity.
// It is safe for concurrent use; all mutation happens under its own lock and
// never while holding any other lock.
type SessionRegistry struct {
	mu sync.RWMutex

	// sessions maps connection id to identity. At most one entry per
	// connection id; many entries may share a user id (multi-device).
	sessions map[string]user.User

	// byUser indexes connection ids per user id for enumeration.
	byUser map[string]map[string]struct{}
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]user.User),
		byUser:   make(map[string]map[string]struct{}),
	}
}

// Register stores the identity for a connection id. A duplicate id is an
// invariant violation on the transport's part; the registry logs it and
// overwrites rather than failing, so one misbehaving connection cannot take
// the process down. It returns the previous identity when an overwrite
// happened.
func (r *SessionRegistry) Register(connID string, identity user.User) (previous user.User, overwrote bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[connID]; ok {
		logx.Warn("Duplicate connection id registered, overwriting previous session",
			"conn_id", connID, "previous_user", existing.ID, "new_user", identity.ID)
		r.removeLocked(connID, existing)
		previous, overwrote = existing, true
	}

	r.sessions[connID] = identity
	if r.byUser[identity.ID] == nil {
		r.byUser[identity.ID] = make(map[string]struct{})
	}
	r.byUser[identity.ID][connID] = struct{}{}

	return previous, overwrote
}

// Unregister removes the entry for a connection id. It is a no-op for an
// unknown id, which makes repeated disconnect signals safe.
func (r *SessionRegistry) Unregister(connID string) (user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.sessions[connID]
	if !ok {
		return user.User{}, false
	}

	r.removeLocked(connID, identity)
	return identity, true
}

func (r *SessionRegistry) removeLocked(connID string, identity user.User) {
	delete(r.sessions, connID)
	if conns, ok := r.byUser[identity.ID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.byUser, identity.ID)
		}
	}
}

// Lookup returns the identity bound to a connection id.
func (r *SessionRegistry) Lookup(connID string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.sessions[connID]
	return identity, ok
}

// CountForUser returns the number of live connections for a user.
func (r *SessionRegistry) CountForUser(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser[userID])
}

// ConnectionsForUser returns the connection ids currently held by a user.
func (r *SessionRegistry) ConnectionsForUser(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the total number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
