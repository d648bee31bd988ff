package handler

import (
	"net/http"

	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/errs"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/resp"
)

// HandleListUsers returns every registered account except the caller's own,
// for building room participant pickers.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		users, err := deps.Store.ListUsersExcept(r.Context(), payload.UserID)
		if err != nil {
			logx.Error(err, "Failed to list users", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailure))
			return
		}

		out := make([]map[string]any, 0, len(users))
		for _, u := range users {
			out = append(out, map[string]any{
				"id":          u.ID,
				"displayName": u.DisplayName,
				"avatar":      u.AvatarURL,
				"isOnline":    u.IsOnline,
			})
		}
		resp.RespondSuccess(w, r, map[string]any{"users": out})
	}
}
