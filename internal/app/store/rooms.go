package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"parley/internal/app/user"
	"parley/internal/pkg/randx"
)

const roomColumns = `id, name, description, room_type, created_by, created_at, updated_at`

func scanRoom(row pgx.Row) (Room, error) {
	var r Room
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Type, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("scan room: %w", err)
	}
	return r, nil
}

// CreateRoomParams holds the fields needed to create a room. Participants must
// already include the creator and be de-duplicated by the caller.
type CreateRoomParams struct {
	Name         string
	Description  string
	Type         RoomType
	CreatedBy    string
	Participants []string
}

// CreateRoom inserts a room and its participant set in one transaction.
// For personal rooms the normalized pair key is written, so a concurrent
// creation of the same pair fails with a unique violation instead of producing
// a second room.
func (s *Store) CreateRoom(ctx context.Context, params CreateRoomParams) (Room, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Room{}, fmt.Errorf("begin create room: %w", err)
	}
	defer tx.Rollback(ctx)

	var pairKey *string
	if params.Type == RoomTypePersonal && len(params.Participants) == 2 {
		key := randx.PairKey(params.Participants[0], params.Participants[1])
		pairKey = &key
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO rooms (id, name, description, room_type, created_by, pair_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+roomColumns,
		randx.NewID(), params.Name, params.Description, params.Type, params.CreatedBy, pairKey,
	)
	room, err := scanRoom(row)
	if err != nil {
		return Room{}, err
	}

	for _, participantID := range params.Participants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO room_participants (room_id, user_id) VALUES ($1, $2)`,
			room.ID, participantID,
		); err != nil {
			return Room{}, fmt.Errorf("insert participant %s: %w", participantID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Room{}, fmt.Errorf("commit create room: %w", err)
	}

	room.Participants, err = s.roomParticipants(ctx, room.ID)
	if err != nil {
		return Room{}, err
	}
	return room, nil
}

// RoomForParticipant fetches the room only if the given user is currently a
// participant. This is the authoritative membership read behind every
// real-time authorization check; it is never cached.
func (s *Store) RoomForParticipant(ctx context.Context, roomID, userID string) (Room, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE id = $1
		  AND EXISTS (
			SELECT 1 FROM room_participants
			WHERE room_id = rooms.id AND user_id = $2
		  )`,
		roomID, userID,
	)
	return scanRoom(row)
}

// RoomWithParticipants fetches a participant-scoped room with its full
// participant list populated.
func (s *Store) RoomWithParticipants(ctx context.Context, roomID, userID string) (Room, error) {
	room, err := s.RoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return Room{}, err
	}
	room.Participants, err = s.roomParticipants(ctx, room.ID)
	if err != nil {
		return Room{}, err
	}
	return room, nil
}

// ListRoomsForUser returns every room the user participates in, most recently
// active first, each with its participant list populated.
func (s *Store) ListRoomsForUser(ctx context.Context, userID string) ([]Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE EXISTS (
			SELECT 1 FROM room_participants
			WHERE room_id = rooms.id AND user_id = $1
		)
		ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		rooms[i].Participants, err = s.roomParticipants(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// RoomIDsForUser returns the ids of every room the user belongs to. The
// lifecycle controller uses it to auto-subscribe a fresh connection and to
// address presence fan-out.
func (s *Store) RoomIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT room_id FROM room_participants WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("room ids for user: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateRoomParams holds the optional room fields; nil means unchanged.
type UpdateRoomParams struct {
	Name        *string
	Description *string
}

// UpdateRoom applies the non-nil fields and returns the updated room with
// participants populated.
func (s *Store) UpdateRoom(ctx context.Context, roomID string, params UpdateRoomParams) (Room, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE rooms
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+roomColumns,
		roomID, params.Name, params.Description,
	)
	room, err := scanRoom(row)
	if err != nil {
		return Room{}, err
	}
	room.Participants, err = s.roomParticipants(ctx, room.ID)
	if err != nil {
		return Room{}, err
	}
	return room, nil
}

// DeleteRoom removes the room; messages and participant rows go with it via
// cascading foreign keys.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchRoom bumps the room's last-activity timestamp, called after each
// persisted message so room lists sort by recency.
func (s *Store) TouchRoom(ctx context.Context, roomID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE rooms SET updated_at = now() WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("touch room %s: %w", roomID, err)
	}
	return nil
}

func (s *Store) roomParticipants(ctx context.Context, roomID string) ([]user.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.display_name, u.avatar_url
		FROM room_participants rp
		JOIN users u ON u.id = rp.user_id
		WHERE rp.room_id = $1
		ORDER BY u.display_name`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("room participants: %w", err)
	}
	defer rows.Close()

	var participants []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Avatar); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, u)
	}
	return participants, rows.Err()
}
