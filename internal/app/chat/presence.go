/*
Package chat contains the real-time room, session, and presence engine.

This file defines the PresenceTracker, which derives "is this user online" from
the count of live connections per user. Only the 0→1 and 1→0 edges produce
outward transitions; intermediate device counts change silently.
*/
package chat

import "sync"

// PresenceTracker counts live connections per user and reports online/offline
// transitions. Counting and the transition decision happen atomically under
// one lock, so two simultaneous connects for the same user can never both
// observe a zero count and both report the user coming online.
type PresenceTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewPresenceTracker returns an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{counts: make(map[string]int)}
}

// OnConnect records one new live connection for the user and reports whether
// this took the user from offline to online.
func (t *PresenceTracker) OnConnect(userID string) (cameOnline bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[userID]++
	return t.counts[userID] == 1
}

// OnDisconnect records the end of one live connection for the user and reports
// whether this took the user offline. A call for a user with no recorded
// connections is ignored.
func (t *PresenceTracker) OnDisconnect(userID string) (wentOffline bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	count, ok := t.counts[userID]
	if !ok {
		return false
	}

	if count <= 1 {
		delete(t.counts, userID)
		return true
	}

	t.counts[userID] = count - 1
	return false
}

// IsOnline reports whether the user has at least one live connection.
func (t *PresenceTracker) IsOnline(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.counts[userID] > 0
}

// OnlineCount returns the number of users currently online.
func (t *PresenceTracker) OnlineCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.counts)
}
