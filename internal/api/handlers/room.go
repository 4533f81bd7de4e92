package handlers

import (
	"log/slog"
	"net/http"

	"room-relay/internal/models"
	"room-relay/internal/services"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// ListRooms godoc
// @Summary List rooms
// @Description Get every distinct room ever created or messaged as [room_id, room_name] pairs
// @Tags rooms
// @Produce json
// @Success 200 {array} []string "List of [room_id, room_name] pairs"
// @Router /rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	pairs := make([][2]string, 0)

	rooms, err := h.roomService.ListRooms(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list rooms", "error", err)
		c.JSON(http.StatusOK, pairs)
		return
	}

	for _, room := range rooms {
		pairs = append(pairs, room.Pair())
	}
	c.JSON(http.StatusOK, pairs)
}

// CreateRoom godoc
// @Summary Create a room
// @Description Create a room with the given name and return its generated id as plain text
// @Tags rooms
// @Accept json
// @Produce plain
// @Param request body models.CreateRoomRequest true "Room creation data"
// @Success 201 {string} string "Room id"
// @Failure 400 {object} map[string]interface{} "Bad request - invalid input data"
// @Failure 429 {object} map[string]interface{} "Too many requests"
// @Failure 500 {string} string "Failed to create room"
// @Router /add_room [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	id, err := h.roomService.CreateRoom(c.Request.Context(), *req.Name)
	if err != nil {
		slog.Error("Failed to create room", "roomName", *req.Name, "error", err)
		c.String(http.StatusInternalServerError, "Failed to create room")
		return
	}

	c.String(http.StatusCreated, id)
}

// GetRoomMessages godoc
// @Summary Get room messages
// @Description Get the stored message texts of a room, oldest first
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {array} string "Message texts"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /rooms/{id}/messages [get]
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("id")

	texts, err := h.roomService.RoomMessages(c.Request.Context(), roomID)
	if err != nil {
		slog.Error("Failed to get room messages", "roomID", roomID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages"})
		return
	}
	c.JSON(http.StatusOK, texts)
}
