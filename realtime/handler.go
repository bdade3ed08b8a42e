// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

// ServeWS upgrades authenticated requests to websocket clients of hub.
// identity resolves the already-authenticated user from the request.
// An origin list containing "*" accepts any origin.
func ServeWS(hub *Hub, allowedOrigins []string, identity func(*http.Request) string) http.HandlerFunc {
	anyOrigin := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if anyOrigin {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			slog.Debug("websocket upgrade failed", "error", err)
			return
		}
		NewClient(hub, conn, identity(r)).Start()
	}
}
