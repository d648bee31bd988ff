package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"parley/internal/pkg/randx"
)

const userColumns = `id, email, password_hash, display_name, avatar_url, is_online, last_seen, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.AvatarURL,
		&u.IsOnline, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new account. A duplicate email surfaces as a unique
// violation for the caller to classify.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, displayName, avatarURL string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		randx.NewID(), email, passwordHash, displayName, avatarURL,
	)
	return scanUser(row)
}

// UserByEmail fetches the account with the given email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UserByID fetches the account with the given id.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpdateProfileParams holds the optional profile fields; nil means unchanged.
type UpdateProfileParams struct {
	DisplayName *string
	AvatarURL   *string
}

// UpdateProfile applies the non-nil fields and returns the updated account.
func (s *Store) UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    avatar_url   = COALESCE($3, avatar_url),
		    updated_at   = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, params.DisplayName, params.AvatarURL,
	)
	return scanUser(row)
}

// SetUserPresence mirrors the in-memory presence decision into the durable
// is_online flag and refreshes last_seen. The flag is a best-effort cache; the
// in-memory tracker stays the source of truth.
func (s *Store) SetUserPresence(ctx context.Context, id string, online bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET is_online = $2, last_seen = now(), updated_at = now() WHERE id = $1`,
		id, online,
	)
	if err != nil {
		return fmt.Errorf("update presence for user %s: %w", id, err)
	}
	return nil
}

// ListUsersExcept returns every account except the given one, ordered by
// display name. Used by the contact picker for personal chats.
func (s *Store) ListUsersExcept(ctx context.Context, id string) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY display_name`, id)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsersByIDs reports how many of the given ids exist, used to validate
// participant lists before room creation.
func (s *Store) CountUsersByIDs(ctx context.Context, ids []string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE id = ANY($1)`, ids).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
