/*
Package chat contains the real-time room, session, and presence engine.

This file defines the Hub: the connection lifecycle controller and the event
router. The hub authenticates handshakes, registers sessions, keeps presence
consistent across devices, routes every inbound action through the membership
authority, and addresses fan-out through the broker.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"parley/internal/app/store"
	"parley/internal/app/user"
	"parley/internal/pkg/logx"
)

// Store is the narrow storage surface the engine depends on. The pgx-backed
// implementation lives in internal/app/store; tests substitute an in-memory
// double.
type Store interface {
	UserByID(ctx context.Context, id string) (store.User, error)
	RoomForParticipant(ctx context.Context, roomID, userID string) (store.Room, error)
	RoomIDsForUser(ctx context.Context, userID string) ([]string, error)
	SaveMessage(ctx context.Context, m store.NewMessage) (store.Message, error)
	TouchRoom(ctx context.Context, roomID string) error
	SetUserPresence(ctx context.Context, userID string, online bool) error
}

// TokenVerifier recovers the account id from a bearer token, or fails.
type TokenVerifier func(token string) (userID string, err error)

// ErrAuthentication is the single, deliberately vague error returned for every
// handshake failure: missing token, bad signature, expired token, or an
// account that no longer exists.
var ErrAuthentication = errors.New("authentication error")

// Hub owns the engine's shared state and routes every real-time action.
type Hub struct {
	sessions  *SessionRegistry
	presence  *PresenceTracker
	broker    *Broker
	authority *Authority
	store     Store
	verify    TokenVerifier
	logger    zerolog.Logger
}

// NewHub wires the engine together around the given storage collaborator and
// token verifier.
func NewHub(s Store, verify TokenVerifier) *Hub {
	return &Hub{
		sessions:  NewSessionRegistry(),
		presence:  NewPresenceTracker(),
		broker:    NewBroker(),
		authority: NewAuthority(s),
		store:     s,
		verify:    verify,
		logger:    logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// Sessions exposes the registry for read-only introspection (health, tests).
func (h *Hub) Sessions() *SessionRegistry { return h.sessions }

// Authenticate resolves a bearer token into a full identity. A refused
// handshake leaves no trace: no session entry, no presence change, no room
// subscription.
func (h *Hub) Authenticate(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrAuthentication
	}

	userID, err := h.verify(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Handshake token verification failed")
		return user.User{}, ErrAuthentication
	}

	account, err := h.store.UserByID(ctx, userID)
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("Handshake identity lookup failed")
		return user.User{}, ErrAuthentication
	}

	return account.Public(), nil
}

// Connect registers an authenticated connection: session entry, presence
// count, private user channel, and a silent subscription to every room the
// user belongs to. If this is the user's first live connection, peers in those
// rooms are told the user came online and the durable presence flag is
// mirrored best-effort.
func (h *Hub) Connect(ctx context.Context, sub Subscriber, identity user.User) {
	connID := sub.ConnID()

	if previous, overwrote := h.sessions.Register(connID, identity); overwrote {
		// Defensive self-heal for a transport that reused a connection id:
		// drop the stale subscriptions and balance the presence count. When the
		// overwritten connection was the previous user's last one, their peers
		// still get the offline transition.
		h.broker.DropAll(connID)
		if h.presence.OnDisconnect(previous.ID) {
			h.notifyOffline(ctx, previous)
		}
	}

	cameOnline := h.presence.OnConnect(identity.ID)

	h.broker.BindUser(identity.ID, sub)

	roomIDs, err := h.store.RoomIDsForUser(ctx, identity.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.ID).Msg("Failed to load rooms for auto-subscription")
		roomIDs = nil
	}
	for _, roomID := range roomIDs {
		h.broker.SubscribeRoom(roomID, sub)
	}

	if cameOnline {
		if err := h.store.SetUserPresence(ctx, identity.ID, true); err != nil {
			h.logger.Warn().Err(err).Str("user_id", identity.ID).Msg("Failed to mirror online flag")
		}

		online := Envelope{Event: EventUserOnline, Data: PresenceData{
			UserID:      identity.ID,
			DisplayName: identity.DisplayName,
		}}
		for _, roomID := range roomIDs {
			h.broker.DeliverToRoomExcept(roomID, connID, online)
		}
	}

	h.logger.Info().
		Str("conn_id", connID).
		Str("user_id", identity.ID).
		Int("rooms", len(roomIDs)).
		Bool("came_online", cameOnline).
		Msg("Connection registered")
}

// Disconnect tears a connection down. It is safe to call at any time and any
// number of times; only the first call for a registered connection has any
// effect, and a connection that never completed the handshake is a no-op.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	identity, ok := h.sessions.Unregister(connID)
	if !ok {
		return
	}

	h.broker.DropAll(connID)

	wentOffline := h.presence.OnDisconnect(identity.ID)

	h.logger.Info().
		Str("conn_id", connID).
		Str("user_id", identity.ID).
		Bool("went_offline", wentOffline).
		Msg("Connection unregistered")

	if !wentOffline {
		return
	}

	h.notifyOffline(ctx, identity)
}

// notifyOffline mirrors the offline flag and tells the user's rooms they went
// offline. Called only after an actual 1→0 presence transition.
func (h *Hub) notifyOffline(ctx context.Context, identity user.User) {
	// Best-effort durable mirror; teardown never blocks on it.
	if err := h.store.SetUserPresence(ctx, identity.ID, false); err != nil {
		h.logger.Warn().Err(err).Str("user_id", identity.ID).Msg("Failed to mirror offline flag")
	}

	roomIDs, err := h.store.RoomIDsForUser(ctx, identity.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.ID).Msg("Failed to load rooms for offline fan-out")
		return
	}

	offline := Envelope{Event: EventUserOffline, Data: PresenceData{
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
	}}
	for _, roomID := range roomIDs {
		h.broker.DeliverToRoom(roomID, offline)
	}
}

// Dispatch routes one inbound frame from a connection. Ordering within a
// connection is the caller's concern: the read pump invokes Dispatch
// sequentially, so a connection's actions are handled in the order received.
func (h *Hub) Dispatch(ctx context.Context, sub Subscriber, raw []byte) {
	identity, ok := h.sessions.Lookup(sub.ConnID())
	if !ok {
		h.logger.Warn().Str("conn_id", sub.ConnID()).Msg("Dropping event from unregistered connection")
		return
	}

	var frame inboundEnvelope
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.sendError(sub, "Invalid event format")
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		h.handleJoinRoom(ctx, sub, identity, frame.Data)
	case EventLeaveRoom:
		h.handleLeaveRoom(ctx, sub, identity, frame.Data)
	case EventSendMessage:
		h.handleSendMessage(ctx, sub, identity, frame.Data)
	case EventTypingStart:
		h.handleTyping(sub, identity, frame.Data, true)
	case EventTypingStop:
		h.handleTyping(sub, identity, frame.Data, false)
	default:
		h.logger.Warn().Str("event", frame.Event).Msg("Client sent unsupported event")
		h.sendError(sub, "Unsupported event")
	}
}

func (h *Hub) handleJoinRoom(ctx context.Context, sub Subscriber, identity user.User, raw json.RawMessage) {
	var data JoinRoomData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		h.sendError(sub, "Invalid event format")
		return
	}

	// Authorization always uses the authenticated identity; the userId field
	// in the payload is client convenience, not proof of anything.
	if err := h.authority.Authorize(ctx, identity.ID, data.RoomID); err != nil {
		if errors.Is(err, ErrAccessDenied) {
			h.sendError(sub, "Room not found or access denied")
		} else {
			h.logger.Error().Err(err).Str("room_id", data.RoomID).Msg("join_room authorization lookup failed")
			h.sendError(sub, "Failed to join room")
		}
		return
	}

	h.broker.SubscribeRoom(data.RoomID, sub)

	h.send(sub, Envelope{Event: EventJoinedRoom, Data: RoomAckData{
		RoomID:  data.RoomID,
		Message: "Successfully joined room",
	}})

	h.broker.DeliverToRoomExcept(data.RoomID, sub.ConnID(), Envelope{
		Event: EventUserJoined,
		Data:  RoomUserData{RoomID: data.RoomID, User: identity},
	})
}

func (h *Hub) handleLeaveRoom(ctx context.Context, sub Subscriber, identity user.User, raw json.RawMessage) {
	var data LeaveRoomData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		h.sendError(sub, "Invalid event format")
		return
	}

	if !h.broker.UnsubscribeRoom(data.RoomID, sub.ConnID()) {
		h.sendError(sub, "Not subscribed to room")
		return
	}

	h.send(sub, Envelope{Event: EventLeftRoom, Data: RoomAckData{
		RoomID:  data.RoomID,
		Message: "Successfully left room",
	}})

	h.broker.DeliverToRoom(data.RoomID, Envelope{
		Event: EventUserLeft,
		Data:  RoomUserData{RoomID: data.RoomID, User: identity},
	})
}

func (h *Hub) handleSendMessage(ctx context.Context, sub Subscriber, identity user.User, raw json.RawMessage) {
	var data SendMessageData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		h.sendError(sub, "Invalid event format")
		return
	}

	content := strings.TrimSpace(data.Content)
	if content == "" {
		h.sendError(sub, "Message content cannot be empty")
		return
	}
	if len(content) > MaxContentBytes {
		h.sendError(sub, "Message is too long")
		return
	}

	msgType := data.Type
	if msgType == "" {
		msgType = "text"
	}
	switch msgType {
	case "text", "image", "file":
	default:
		h.sendError(sub, "Invalid message type")
		return
	}

	if err := h.authority.Authorize(ctx, identity.ID, data.RoomID); err != nil {
		if errors.Is(err, ErrAccessDenied) {
			h.sendError(sub, "Room not found or access denied")
		} else {
			h.logger.Error().Err(err).Str("room_id", data.RoomID).Msg("send_message authorization lookup failed")
			h.sendError(sub, "Failed to send message")
		}
		return
	}

	saved, err := h.store.SaveMessage(ctx, store.NewMessage{
		RoomID:   data.RoomID,
		SenderID: identity.ID,
		Content:  content,
		Type:     msgType,
	})
	if err != nil {
		// Not retried; the client owns the resend.
		h.logger.Error().Err(err).Str("room_id", data.RoomID).Msg("Failed to persist message")
		h.sendError(sub, "Failed to send message")
		return
	}

	if err := h.store.TouchRoom(ctx, data.RoomID); err != nil {
		h.logger.Warn().Err(err).Str("room_id", data.RoomID).Msg("Failed to touch room activity")
	}

	// Broadcast immediately after persistence so per-room broadcast order
	// follows persistence order. The sender's own connection is included.
	h.broker.DeliverToRoom(data.RoomID, Envelope{
		Event: EventNewMessage,
		Data: NewMessageData{Message: MessageData{
			ID:        saved.ID,
			Content:   saved.Content,
			Type:      saved.Type,
			Sender:    identity,
			RoomID:    saved.RoomID,
			CreatedAt: saved.CreatedAt,
		}},
	})
}

func (h *Hub) handleTyping(sub Subscriber, identity user.User, raw json.RawMessage, isTyping bool) {
	var data TypingData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		h.sendError(sub, "Invalid event format")
		return
	}

	// Typing indicators are ephemeral and carry no integrity risk, so holding
	// the room subscription stands in for a storage round-trip.
	if !h.broker.IsSubscribed(data.RoomID, sub.ConnID()) {
		h.sendError(sub, "Not subscribed to room")
		return
	}

	h.broker.DeliverToRoomExcept(data.RoomID, sub.ConnID(), Envelope{
		Event: EventUserTyping,
		Data: UserTypingData{
			RoomID:   data.RoomID,
			User:     identity,
			IsTyping: isTyping,
		},
	})
}

func (h *Hub) send(sub Subscriber, env Envelope) {
	if err := sub.Enqueue(env); err != nil {
		h.logger.Warn().Str("conn_id", sub.ConnID()).Str("event", env.Event).Msg("Failed to queue event for connection")
	}
}

func (h *Hub) sendError(sub Subscriber, message string) {
	h.send(sub, errorEnvelope(message))
}
