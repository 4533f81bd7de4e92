package handlers

import (
	"log/slog"

	"room-relay/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *websocket.Hub
}

func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket godoc
// @Summary WebSocket connection
// @Description Establish a WebSocket connection. Each inbound text frame is a JSON object {room_id, room_name, text}; every other client whose current room matches receives the raw text.
// @Tags websocket
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Failure 400 "Bad request - not a WebSocket handshake"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	slog.Debug("New WebSocket connection request", "remote", c.ClientIP())
	h.hub.ServeWS(c.Writer, c.Request)
}
