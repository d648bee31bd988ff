/*
Package chat contains the real-time room, session, and presence engine.

This file defines the Broker, the broadcast-addressing layer. It resolves logical
targets ("everyone in room R", "user U's personal channel") into deliveries on
individual subscribers. Delivery is immediate, best-effort, and never batched;
a subscriber whose queue is full simply misses the event. The two-operation
addressing contract keeps the door open to a pub/sub-backed implementation for
multi-process fan-out without touching the router.
*/
package chat

import (
	"sync"

	"parley/internal/pkg/logx"
)

// Subscriber is one live connection as the broker sees it: an id and a
// non-blocking delivery queue.
type Subscriber interface {
	// ConnID returns the connection's opaque identifier.
	ConnID() string

	// Enqueue queues an event for delivery. It must not block; it returns an
	// error when the event was dropped.
	Enqueue(env Envelope) error
}

// Broker tracks room and per-user channel subscriptions and fans events out to
// them. It is safe for concurrent use.
type Broker struct {
	mu sync.RWMutex

	// rooms maps room id to the subscribers currently in the room channel.
	rooms map[string]map[string]Subscriber

	// users maps user id to that user's connections (the private channel).
	users map[string]map[string]Subscriber

	// byConn indexes each connection's room subscriptions and user binding
	// so teardown needs no external bookkeeping.
	byConn map[string]*connEntry
}

type connEntry struct {
	userID string
	rooms  map[string]struct{}
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{
		rooms:  make(map[string]map[string]Subscriber),
		users:  make(map[string]map[string]Subscriber),
		byConn: make(map[string]*connEntry),
	}
}

func (b *Broker) entryLocked(connID string) *connEntry {
	entry, ok := b.byConn[connID]
	if !ok {
		entry = &connEntry{rooms: make(map[string]struct{})}
		b.byConn[connID] = entry
	}
	return entry
}

// BindUser attaches the subscriber to the user's private channel, used for
// direct notifications addressed to a user rather than a room.
func (b *Broker) BindUser(userID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.users[userID] == nil {
		b.users[userID] = make(map[string]Subscriber)
	}
	b.users[userID][sub.ConnID()] = sub
	b.entryLocked(sub.ConnID()).userID = userID
}

// SubscribeRoom adds the subscriber to a room channel.
func (b *Broker) SubscribeRoom(roomID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rooms[roomID] == nil {
		b.rooms[roomID] = make(map[string]Subscriber)
	}
	b.rooms[roomID][sub.ConnID()] = sub
	b.entryLocked(sub.ConnID()).rooms[roomID] = struct{}{}
}

// UnsubscribeRoom removes the subscriber from a room channel, reporting
// whether it was subscribed.
func (b *Broker) UnsubscribeRoom(roomID string, connID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := subs[connID]; !ok {
		return false
	}

	delete(subs, connID)
	if len(subs) == 0 {
		delete(b.rooms, roomID)
	}
	if entry, ok := b.byConn[connID]; ok {
		delete(entry.rooms, roomID)
	}
	return true
}

// IsSubscribed reports whether the connection currently holds a subscription
// to the room channel. Typing events use this lighter check instead of a full
// membership read.
func (b *Broker) IsSubscribed(roomID string, connID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs, ok := b.rooms[roomID]
	if !ok {
		return false
	}
	_, ok = subs[connID]
	return ok
}

// DropAll removes the connection from its user channel and every room channel.
// Called once on teardown; calling it again is a no-op.
func (b *Broker) DropAll(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.byConn[connID]
	if !ok {
		return
	}

	for roomID := range entry.rooms {
		if subs, ok := b.rooms[roomID]; ok {
			delete(subs, connID)
			if len(subs) == 0 {
				delete(b.rooms, roomID)
			}
		}
	}

	if entry.userID != "" {
		if subs, ok := b.users[entry.userID]; ok {
			delete(subs, connID)
			if len(subs) == 0 {
				delete(b.users, entry.userID)
			}
		}
	}

	delete(b.byConn, connID)
}

// DeliverToRoom sends the event to every subscriber of the room channel.
func (b *Broker) DeliverToRoom(roomID string, env Envelope) {
	b.deliverRoom(roomID, "", env)
}

// DeliverToRoomExcept sends the event to every subscriber of the room channel
// except the named connection. Used for peer notifications that exclude the
// acting connection.
func (b *Broker) DeliverToRoomExcept(roomID string, exceptConnID string, env Envelope) {
	b.deliverRoom(roomID, exceptConnID, env)
}

func (b *Broker) deliverRoom(roomID string, exceptConnID string, env Envelope) {
	b.mu.RLock()
	targets := make([]Subscriber, 0, len(b.rooms[roomID]))
	for connID, sub := range b.rooms[roomID] {
		if connID == exceptConnID {
			continue
		}
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.Enqueue(env); err != nil {
			logx.Warn("Dropped room event for slow subscriber",
				"room_id", roomID, "conn_id", sub.ConnID(), "event", env.Event)
		}
	}
}

// DeliverToUser sends the event to every connection on the user's private
// channel. Room traffic never routes through it; it is the addressing
// operation for notifications aimed at a user rather than a room, such as
// room invites.
func (b *Broker) DeliverToUser(userID string, env Envelope) {
	b.mu.RLock()
	targets := make([]Subscriber, 0, len(b.users[userID]))
	for _, sub := range b.users[userID] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.Enqueue(env); err != nil {
			logx.Warn("Dropped user event for slow subscriber",
				"user_id", userID, "conn_id", sub.ConnID(), "event", env.Event)
		}
	}
}
