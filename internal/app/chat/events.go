/*
Package chat contains the real-time room, session, and presence engine.

This file defines the wire protocol: every event name and payload shape exchanged
over a websocket connection. Events travel as a JSON envelope {event, data}; the
names and payload fields are part of the client compatibility contract and must
not change.
*/
package chat

import (
	"encoding/json"
	"time"

	"parley/internal/app/user"
)

// Client-to-server event names.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
)

// Server-to-client event names.
const (
	EventJoinedRoom  = "joined_room"
	EventUserJoined  = "user_joined"
	EventLeftRoom    = "left_room"
	EventUserLeft    = "user_left"
	EventNewMessage  = "new_message"
	EventUserTyping  = "user_typing"
	EventUserOnline  = "user_online"
	EventUserOffline = "user_offline"
	EventError       = "error"
)

// Message content limits.
const (
	// MaxContentBytes is the maximum allowed size for message content.
	MaxContentBytes = 5000
)

// Envelope is the outbound wire frame: an event name plus its payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundEnvelope is the inbound wire frame; the payload stays raw until the
// router knows which shape to decode it into.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRoomData is the payload of join_room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// LeaveRoomData is the payload of leave_room.
type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

// SendMessageData is the payload of send_message. Type defaults to "text".
type SendMessageData struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// TypingData is the payload of typing_start and typing_stop.
type TypingData struct {
	RoomID string `json:"roomId"`
}

// RoomAckData is the payload of joined_room and left_room, sent to the
// requester only.
type RoomAckData struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// RoomUserData is the payload of user_joined and user_left, sent to room peers.
type RoomUserData struct {
	RoomID string    `json:"roomId"`
	User   user.User `json:"user"`
}

// MessageData is the persisted message record as broadcast in new_message.
type MessageData struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Sender    user.User `json:"sender"`
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessageData is the payload of new_message.
type NewMessageData struct {
	Message MessageData `json:"message"`
}

// UserTypingData is the payload of user_typing, sent to room peers excluding
// the typist.
type UserTypingData struct {
	RoomID   string    `json:"roomId"`
	User     user.User `json:"user"`
	IsTyping bool      `json:"isTyping"`
}

// PresenceData is the payload of user_online and user_offline.
type PresenceData struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// ErrorData is the payload of the scoped error event. It is only ever sent to
// the connection whose action failed, never broadcast.
type ErrorData struct {
	Message string `json:"message"`
}

func errorEnvelope(message string) Envelope {
	return Envelope{Event: EventError, Data: ErrorData{Message: message}}
}
