package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/ishikisiko/match-telemetry/live"
	"github.com/ishikisiko/match-telemetry/middleware"
)

type WebSocketHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *live.Hub, allowedOrigins []string) *WebSocketHandler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs joins the caller to their private analytics room.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("user_id", userID), slog.Any("error", err))
		return
	}

	h.hub.Attach(conn, live.UserRoom(userID))
}
