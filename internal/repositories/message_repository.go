package repositories

import (
	"context"
	"fmt"

	"room-relay/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db}
}

// AddMessage appends one relayed message.
func (r *MessageRepository) AddMessage(ctx context.Context, roomID, roomName, text string) error {
	msg := &models.Message{RoomID: roomID, RoomName: roomName, Message: text}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// AddRoom records a room creation marker (a row with an empty message).
func (r *MessageRepository) AddRoom(ctx context.Context, roomID, roomName string) error {
	return r.AddMessage(ctx, roomID, roomName, "")
}

// GetRooms returns every distinct (room_id, room_name) pair ever recorded.
func (r *MessageRepository) GetRooms(ctx context.Context) ([]models.Room, error) {
	rooms := make([]models.Room, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("DISTINCT room_id AS id, room_name AS name").
		Order("id, name").
		Scan(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// GetMessages returns the non-empty message texts of a room in insertion order.
func (r *MessageRepository) GetMessages(ctx context.Context, roomID string) ([]string, error) {
	texts := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("room_id = ? AND message <> ''", roomID).
		Order("id").
		Pluck("message", &texts).Error
	if err != nil {
		return nil, fmt.Errorf("list messages for room %s: %w", roomID, err)
	}
	return texts, nil
}
