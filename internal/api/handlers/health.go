package handlers

import (
	"net/http"

	"room-relay/internal/websocket"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	hub *websocket.Hub
}

func NewHealthHandler(hub *websocket.Hub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// Health godoc
// @Summary Health check
// @Description Report liveness along with the number of connected clients and active rooms
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service is up"
// @Router /healthz [get]
func (h *HealthHandler) Health(c *gin.Context) {
	stats := h.hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"clients": stats.Clients,
		"rooms":   stats.Rooms,
	})
}
