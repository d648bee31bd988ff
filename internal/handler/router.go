/*
Package handler provides the HTTP handlers and routing setup for the Parley server.

This file defines the main Router, applying middleware like logging, CORS, and
IP-based rate limiting before delegating requests to specific handlers (REST API
and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"parley/internal/pkg/auth/jwt"
	"parley/internal/pkg/limiter"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/resp"
)

const (
	AuthRate     = 0.2
	AuthBurst    = 5
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and
// per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":      "ok",
			"service":     "Parley Server",
			"connections": deps.Hub.Sessions().Len(),
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(authLimiter.Middleware)
			public.Post("/auth/register", HandleRegister(deps))
			public.Post("/auth/login", HandleLogin(deps))
		})

		api.Group(func(private chi.Router) {
			private.Use(jwt.RequireAuth(deps.Config.JWTSecret))

			private.Get("/auth/me", HandleMe(deps))
			private.Put("/auth/profile", HandleUpdateProfile(deps))

			private.Post("/rooms", HandleCreateRoom(deps))
			private.Get("/rooms", HandleListRooms(deps))
			private.Get("/rooms/{roomID}", HandleGetRoom(deps))
			private.Put("/rooms/{roomID}", HandleUpdateRoom(deps))
			private.Delete("/rooms/{roomID}", HandleDeleteRoom(deps))
			private.Get("/rooms/{roomID}/messages", HandleRoomMessages(deps))

			private.Get("/users", HandleListUsers(deps))

			private.Post("/files/presign-upload", HandlePresignUpload(deps))
			private.Get("/files/presign-download", HandlePresignDownload(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
