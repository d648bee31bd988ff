package jwt

import (
	"context"
	"net/http"
	"strings"

	"parley/internal/pkg/errs"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/resp"
)

// Context key type for storing the Payload struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed jwt.Payload in the request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// BearerToken extracts the token string from an "Authorization: Bearer <token>" header.
// It returns an empty string when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// RequireAuth validates the bearer token on every request and injects the Payload
// into the Context. Requests without a valid token are rejected with 401.
func RequireAuth(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Rejected request with invalid or expired JWT", "error", err)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request Context.
// A nil return means the request passed through no RequireAuth middleware.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
