/*
Package chat contains the real-time room, session, and presence engine.

This file defines the Authority, the storage-backed room membership check
consulted before every room-scoped action.
*/
package chat

import (
	"context"
	"errors"
	"fmt"

	"parley/internal/app/store"
)

// ErrAccessDenied is returned when the user is not currently a participant of
// the room, or the room does not exist. The two cases are deliberately
// indistinguishable to the caller.
var ErrAccessDenied = errors.New("room not found or access denied")

// Authority answers whether a user may act in a room. Every call issues a
// fresh membership read against storage; nothing is cached, so a revoked
// membership takes effect on the user's very next action even while their
// connection still holds the room subscription.
type Authority struct {
	store Store
}

// NewAuthority returns an Authority backed by the given store.
func NewAuthority(s Store) *Authority {
	return &Authority{store: s}
}

// Authorize checks that the user is a current participant of the room.
// It returns nil when allowed, ErrAccessDenied when the room is missing or the
// user is not a participant, and a wrapped storage error otherwise.
func (a *Authority) Authorize(ctx context.Context, userID, roomID string) error {
	_, err := a.store.RoomForParticipant(ctx, roomID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccessDenied
	}
	if err != nil {
		return fmt.Errorf("membership lookup for room %s: %w", roomID, err)
	}
	return nil
}
