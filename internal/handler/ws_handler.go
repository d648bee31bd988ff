package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"parley/internal/app/chat"
	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/errs"
	"parley/internal/pkg/limiter"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/resp"
)

// HandleWebSocket authenticates the caller and upgrades the connection to a
// real-time chat session. The token is accepted from the "token" query
// parameter (browser WebSocket clients cannot set headers) or from the
// Authorization header. Authentication failures are rejected before the
// upgrade so the client receives a regular HTTP error response.
func HandleWebSocket(
	upgrader websocket.Upgrader,
	rateLimiter *limiter.IPRateLimiter,
	deps *AppDeps,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.GetLimiter(ip).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			token = jwt.BearerToken(r)
		}

		identity, err := deps.Hub.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, chat.ErrAuthentication) {
				logx.Error(err, "WebSocket authentication lookup failed")
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote an HTTP error to the client.
			logx.Warn("WebSocket upgrade failed", "error", err.Error(), "remote_ip", ip)
			return
		}

		client := chat.NewClient(deps.Hub, conn, identity)

		logx.Info("WebSocket connection established",
			"conn_id", client.ConnID(),
			"user_id", identity.ID,
		)

		go client.WritePump()
		deps.Hub.Connect(r.Context(), client, identity)
		client.ReadPump()
	}
}
