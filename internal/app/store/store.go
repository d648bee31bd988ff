/*
Package store implements the durable storage collaborator on top of PostgreSQL.

It owns every query the application issues: account records, rooms with their
participant sets, and message history. The real-time engine consumes a narrow
subset of it through an interface defined in the chat package, so tests can
substitute an in-memory double.
*/
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist, or when the
// caller has no access to it (a room lookup scoped to a participant behaves the
// same for "missing" and "not yours").
var ErrNotFound = errors.New("record not found")

// Store executes all database queries against a shared pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
