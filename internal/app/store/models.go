package store

import (
	"time"

	"parley/internal/app/user"
)

// User is the durable account record. PasswordHash never leaves this package's
// callers in a response; Public() strips it down to the wire shape.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	AvatarURL    string
	IsOnline     bool
	LastSeen     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the wire-level identity of the account.
func (u User) Public() user.User {
	return user.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Avatar:      u.AvatarURL,
	}
}

// RoomType distinguishes named group rooms from implicit one-to-one rooms.
type RoomType string

const (
	RoomTypeGroup    RoomType = "group"
	RoomTypePersonal RoomType = "personal"
)

// Valid reports whether t is one of the known room types.
func (t RoomType) Valid() bool {
	return t == RoomTypeGroup || t == RoomTypePersonal
}

// Room is a chat room with its participant set. Participants is populated only
// by the queries that need it; authorization lookups leave it nil.
type Room struct {
	ID           string
	Name         string
	Description  string
	Type         RoomType
	CreatedBy    string
	Participants []user.User
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is a persisted chat message.
type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	Content   string
	Type      string
	CreatedAt time.Time
}

// NewMessage carries the fields needed to persist a message.
type NewMessage struct {
	RoomID   string
	SenderID string
	Content  string
	Type     string
}

// MessageWithSender joins a message with its sender's public identity, used by
// the history endpoint.
type MessageWithSender struct {
	Message
	Sender user.User
}
