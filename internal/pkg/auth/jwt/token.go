package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// SessionExpiration defines the lifetime of an issued session token.
	SessionExpiration = 7 * 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "Parley-Server"
)

// GenerateToken creates and signs a new JWT Token string for the given account.
func GenerateToken(userID, email, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(duration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates the JWT Token string using the provided secretKey.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}
