package store

import (
	"context"
	"fmt"

	"parley/internal/app/user"
	"parley/internal/pkg/randx"
)

// SaveMessage persists a message and returns the full record, including the
// storage-assigned id and timestamp that the broadcast payload carries.
func (s *Store) SaveMessage(ctx context.Context, m NewMessage) (Message, error) {
	var saved Message
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, room_id, sender_id, content, msg_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, room_id, sender_id, content, msg_type, created_at`,
		randx.NewID(), m.RoomID, m.SenderID, m.Content, m.Type,
	).Scan(&saved.ID, &saved.RoomID, &saved.SenderID, &saved.Content, &saved.Type, &saved.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return saved, nil
}

// MessagesForRoom returns one page of a room's history, newest page first but
// each page ordered oldest-to-newest, together with the total message count.
func (s *Store) MessagesForRoom(ctx context.Context, roomID string, page, limit int) ([]MessageWithSender, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.room_id, m.sender_id, m.content, m.msg_type, m.created_at,
		       u.id, u.display_name, u.avatar_url
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3`,
		roomID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("room messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageWithSender
	for rows.Next() {
		var m MessageWithSender
		var sender user.User
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.Type, &m.CreatedAt,
			&sender.ID, &sender.DisplayName, &sender.Avatar,
		); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		m.Sender = sender
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Oldest first within the page.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM messages WHERE room_id = $1`, roomID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	return messages, total, nil
}
