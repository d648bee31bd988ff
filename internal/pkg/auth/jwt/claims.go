package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for Parley.
// It includes standard claims required by the JWT specification and the custom
// claims needed to identify an account on both the REST and real-time surfaces.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the identifier of the authenticated account.
	UserID string `json:"userId"`

	// Email is the account's email, carried for convenience in client-side display.
	Email string `json:"email"`
}
