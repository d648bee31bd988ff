/*
Package randx provides functions for generating unique identifiers and normalized keys.

It wraps UUID generation for connections, rooms, users, and messages, and produces the
normalized participant-pair key used to enforce personal-room uniqueness in storage.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a standard UUID v4 string, used as the identifier for users,
// rooms, and messages.
func NewID() string {
	return uuid.New().String()
}

// ConnectionID generates the opaque identifier assigned to a live websocket connection.
func ConnectionID() string {
	return uuid.New().String()
}

// IsValidID reports whether the given string parses as a UUID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// PairKey returns the normalized key for an unordered pair of user ids.
// The two ids are sorted lexicographically and joined with a colon, so both
// orderings of the same pair map to the same key.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
