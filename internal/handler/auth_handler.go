/*
Package handler provides HTTP handler functions for account registration,
login, and profile management.
*/
package handler

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"parley/internal/app/db"
	"parley/internal/app/store"
	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/errs"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/req"
	"parley/internal/pkg/resp"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validDisplayName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 2 && n <= 50
}

func validAvatarURL(avatar string) bool {
	if avatar == "" {
		return true
	}
	u, err := url.Parse(avatar)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// accountResponse is the account shape returned by the auth endpoints.
func accountResponse(u store.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"displayName": u.DisplayName,
		"avatar":      u.AvatarURL,
		"isOnline":    u.IsOnline,
		"lastSeen":    u.LastSeen,
		"createdAt":   u.CreatedAt,
	}
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// HandleRegister processes the request to create a new account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}
		if utf8.RuneCountInString(input.Password) < 6 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}
		if !validDisplayName(input.DisplayName) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidDisplayName))
			return
		}
		if !validAvatarURL(input.Avatar) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		account, err := deps.Store.CreateUser(r.Context(), input.Email, string(hashedPassword), input.DisplayName, input.Avatar)
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("Registration conflict: email already exists", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "Failed to create account")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		tokenString, err := jwt.GenerateToken(account.ID, account.Email, deps.Config.JWTSecret, jwt.SessionExpiration)
		if err != nil {
			logx.Error(err, "Failed to generate token after registration")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"token": tokenString,
			"user":  accountResponse(account),
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a session token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		account, err := deps.Store.UserByEmail(r.Context(), input.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}
			logx.Error(err, "Failed to fetch account for login")
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		tokenString, err := jwt.GenerateToken(account.ID, account.Email, deps.Config.JWTSecret, jwt.SessionExpiration)
		if err != nil {
			logx.Error(err, "Failed to generate token for login")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"user":  accountResponse(account),
		})
	}
}

// HandleMe returns the authenticated account.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Store.UserByID(r.Context(), payload.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to fetch account", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": accountResponse(account)})
	}
}

type UpdateProfileInput struct {
	DisplayName *string `json:"displayName,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// HandleUpdateProfile updates the caller's display name and avatar.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.DisplayName != nil && !validDisplayName(*input.DisplayName) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidDisplayName))
			return
		}
		if input.Avatar != nil && !validAvatarURL(*input.Avatar) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		account, err := deps.Store.UpdateProfile(r.Context(), payload.UserID, store.UpdateProfileParams{
			DisplayName: input.DisplayName,
			AvatarURL:   input.Avatar,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to update profile", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": accountResponse(account)})
	}
}
