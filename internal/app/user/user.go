/*
Package user contains the wire-level representation of a chat participant.

The User struct is the shape embedded in real-time event payloads (user_joined,
user_left, user_typing) and in REST responses that reference a participant.
*/
package user

// User represents the public identity of a chat participant.
type User struct {
	// ID is the account identifier.
	ID string `json:"id"`

	// DisplayName is the name shown to other participants.
	DisplayName string `json:"displayName"`

	// Avatar is the URL of the user's avatar image, if any.
	Avatar string `json:"avatar,omitempty"`
}
